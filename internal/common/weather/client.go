// Package weather fetches the OpenWeatherMap 3-hour forecast and renders it as
// the plain-text snapshot handed to the prompt builder.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"weekend-planner/internal/common/config"
	commonhttp "weekend-planner/internal/common/http"
)

const (
	dayStartHour = 8
	dayEndHour   = 20
)

// Forecaster returns a human-readable forecast for the next few days.
type Forecaster interface {
	Forecast(ctx context.Context) (string, error)
}

type Client struct {
	http     *commonhttp.Client
	baseURL  string
	apiKey   string
	location string
	days     int
	loc      *time.Location
	now      func() time.Time
}

func NewClient(cfg config.WeatherConfig, httpClient *commonhttp.Client) (*Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		location: cfg.Location,
		days:     cfg.Days,
		loc:      loc,
		now:      time.Now,
	}, nil
}

// WithClock replaces the clock used to pick the forecast days.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
}

func (e forecastEntry) condition() string {
	if len(e.Weather) == 0 {
		return "unknown"
	}
	return e.Weather[0].Description
}

func (c *Client) Forecast(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("q", c.location)
	q.Set("appid", c.apiKey)
	q.Set("units", "imperial")

	body, err := c.http.Get(ctx, c.baseURL+"/data/2.5/forecast?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("fetch forecast: %w", err)
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode forecast: %w", err)
	}
	return c.render(resp.List), nil
}

func (c *Client) render(entries []forecastEntry) string {
	today := c.now().In(c.loc)
	days := make([]string, c.days)
	byDay := make(map[string][]forecastEntry, c.days)
	for i := range days {
		days[i] = today.AddDate(0, 0, i).Format("2006-01-02")
	}

	for _, e := range entries {
		local := time.Unix(e.Dt, 0).In(c.loc)
		if local.Hour() < dayStartHour || local.Hour() > dayEndHour {
			continue
		}
		key := local.Format("2006-01-02")
		byDay[key] = append(byDay[key], e)
	}

	sections := make([]string, 0, len(days))
	for _, day := range days {
		dayEntries := byDay[day]
		if len(dayEntries) == 0 {
			sections = append(sections, fmt.Sprintf("No forecast available for %s.", day))
			continue
		}
		sections = append(sections, c.renderDay(day, dayEntries))
	}
	return strings.Join(sections, "\n\n")
}

func (c *Client) renderDay(day string, entries []forecastEntry) string {
	high, low := entries[0].Main.Temp, entries[0].Main.Temp
	conditions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Main.Temp > high {
			high = e.Main.Temp
		}
		if e.Main.Temp < low {
			low = e.Main.Temp
		}
		conditions = append(conditions, e.condition())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Forecast for %s on %s:\n", c.location, day)
	fmt.Fprintf(&sb, "  HIGH: %.1f°F | LOW: %.1f°F\n", high, low)
	fmt.Fprintf(&sb, "  Conditions: %s\n", mostCommon(conditions))
	sb.WriteString("  Hourly Details (8AM-8PM local):")
	for _, e := range entries {
		local := time.Unix(e.Dt, 0).In(c.loc)
		fmt.Fprintf(&sb, "\n    %s: %s, Temp: %.1f°F, Humidity: %d%%, Wind: %.1f mph, Clouds: %d%%",
			local.Format("2006-01-02 03:04 PM MST"), e.condition(), e.Main.Temp, e.Main.Humidity, e.Wind.Speed, e.Clouds.All)
	}
	return sb.String()
}

// mostCommon picks the most frequent value; ties go to the one that reached the count first.
func mostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
