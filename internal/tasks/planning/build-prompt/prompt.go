// internal/tasks/planning/build-prompt/prompt.go
package buildprompt

import (
	"fmt"
	"strings"
	"time"

	"weekend-planner/internal/models"
)

const (
	WeatherHeading     = "Weekend weather forecast:"
	RecentVenuesClause = "Recently visited venues (suggest different venues): "
	WeatherUnavailable = "Weather forecast unavailable."
	promptDateLayout   = "2006-01-02"
)

var planningGuidance = []string{
	"Only suggest activities that suit the expected weather. If it is poor for outdoor plans, suggest indoor alternatives.",
	"Use the venue tools to check upcoming events and prefer concrete events with dates and times.",
	"Keep every suggestion suitable for all of the children's ages.",
	"Name each venue explicitly in your recommendations.",
}

// Household carries optional family details that are not per child.
type Household struct {
	HomeLocation string
	Bedtime      string
}

// BuildSystemPrompt renders the agent system prompt. Output depends only on
// its arguments.
func BuildSystemPrompt(children []models.ChildProfile, weather string, recentVenues []string, today time.Time) string {
	return Household{}.Build(children, weather, recentVenues, today)
}

func (h Household) Build(children []models.ChildProfile, weather string, recentVenues []string, today time.Time) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful family weekend planning assistant.\n")
	fmt.Fprintf(&sb, "Today's date is %s (%s).\n\n", today.Format(promptDateLayout), today.Weekday())

	ages := make([]int, len(children))
	for i, c := range children {
		ages[i] = c.AgeOn(today)
	}
	switch len(children) {
	case 0:
	case 1:
		fmt.Fprintf(&sb, "The family has 1 child, age %s:\n", models.JoinAges(ages))
	default:
		fmt.Fprintf(&sb, "The family has %d children, ages %s:\n", len(children), models.JoinAges(ages))
	}
	for i, c := range children {
		if len(c.Interests) == 0 {
			fmt.Fprintf(&sb, "- %s (age %d)\n", c.Name, ages[i])
			continue
		}
		fmt.Fprintf(&sb, "- %s (age %d): %s\n", c.Name, ages[i], strings.Join(c.Interests, ", "))
	}

	if h.HomeLocation != "" {
		fmt.Fprintf(&sb, "The family lives near %s.\n", h.HomeLocation)
	}
	if h.Bedtime != "" {
		fmt.Fprintf(&sb, "The kids go to bed at %s, so plans should wrap up before then.\n", h.Bedtime)
	}

	weather = strings.TrimSpace(weather)
	if weather == "" {
		weather = WeatherUnavailable
	}
	sb.WriteString("\n" + WeatherHeading + "\n")
	sb.WriteString(weather)
	sb.WriteString("\n\nPlanning guidance:\n")
	for _, g := range planningGuidance {
		sb.WriteString("- " + g + "\n")
	}

	if venues := models.NormalizeSet(recentVenues); len(venues) > 0 {
		sb.WriteString("\n" + RecentVenuesClause + strings.Join(venues, ", ") + "\n")
	}

	return sb.String()
}
