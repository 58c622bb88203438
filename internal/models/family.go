// internal/models/family.go
package models

import (
	"fmt"
	"strings"
	"time"
)

const BirthdateLayout = "2006-01-02"

// ChildProfile is static family configuration.
type ChildProfile struct {
	Name      string    `json:"name"`
	Birthdate time.Time `json:"birthdate"`
	Interests []string  `json:"interests"`
}

// ParseChildProfile builds a profile from a YYYY-MM-DD birthdate.
func ParseChildProfile(name, birthdate string, interests []string) (ChildProfile, error) {
	born, err := time.Parse(BirthdateLayout, birthdate)
	if err != nil {
		return ChildProfile{}, fmt.Errorf("child %q: parse birthdate %q: %w", name, birthdate, err)
	}
	return ChildProfile{
		Name:      name,
		Birthdate: born,
		Interests: append([]string(nil), interests...),
	}, nil
}

// AgeOn returns whole years as floor(days since birth / 365). Leap days are
// not corrected for, so the result can run ahead of the calendar age for a few
// days before a birthday.
func (c ChildProfile) AgeOn(today time.Time) int {
	born := time.Date(c.Birthdate.Year(), c.Birthdate.Month(), c.Birthdate.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(born).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 365
}

// JoinAges renders ages as "7", "7 and 6" or "7, 6, and 3".
func JoinAges(ages []int) string {
	parts := make([]string, len(ages))
	for i, age := range ages {
		parts[i] = fmt.Sprintf("%d", age)
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}
