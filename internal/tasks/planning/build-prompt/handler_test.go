package buildprompt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekend-planner/internal/common/logger"
	"weekend-planner/internal/models"
)

var fixedNow = time.Date(2025, 12, 21, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	venues []string
	days   int
}

func (f *fakeStore) Save(context.Context, *models.RecommendationRecord) string { return "" }

func (f *fakeStore) QueryRecent(context.Context, int) []*models.RecommendationRecord {
	return []*models.RecommendationRecord{}
}

func (f *fakeStore) RecentVenues(_ context.Context, days int) []string {
	f.days = days
	return append([]string{}, f.venues...)
}

type fakeForecaster struct {
	text string
	err  error
}

func (f fakeForecaster) Forecast(context.Context) (string, error) { return f.text, f.err }

func testChildren(t *testing.T) []models.ChildProfile {
	t.Helper()
	specs := []struct {
		name      string
		birthdate string
		interests []string
	}{
		{"Grayson", "2018-04-27", []string{"animals", "science"}},
		{"Avery", "2019-12-03", []string{"art"}},
		{"Rowan", "2022-02-22", []string{"playgrounds"}},
	}
	out := make([]models.ChildProfile, 0, len(specs))
	for _, s := range specs {
		child, err := models.ParseChildProfile(s.name, s.birthdate, s.interests)
		require.NoError(t, err)
		out = append(out, child)
	}
	return out
}

func newTestHandler(t *testing.T, store *fakeStore, forecaster fakeForecaster) *Handler {
	cfg := &Config{
		Children:        testChildren(t),
		HomeLocation:    "Columbus, OH",
		Bedtime:         "19:30",
		LookbackDays:    30,
		UserMessage:     "What should we do this weekend?",
		WeatherLocation: "Columbus,OH,US",
	}
	return NewHandler(cfg, store, forecaster, logger.NewTestLogger(t)).
		WithClock(func() time.Time { return fixedNow })
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	children := testChildren(t)
	a := BuildSystemPrompt(children, "Sunny", []string{"Zoo", "Aquarium"}, fixedNow)
	b := BuildSystemPrompt(children, "Sunny", []string{"Aquarium", "Zoo"}, fixedNow)
	assert.Equal(t, a, b)
}

func TestBuildSystemPrompt_NoHistoryClauseWhenEmpty(t *testing.T) {
	tests := []struct {
		name   string
		venues []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"blank entries", []string{"", "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildSystemPrompt(testChildren(t), "Sunny", tt.venues, fixedNow)
			assert.NotContains(t, prompt, "Recently visited")
		})
	}
}

func TestBuildSystemPrompt_Contents(t *testing.T) {
	prompt := BuildSystemPrompt(testChildren(t), "Heavy rain", []string{"Columbus Zoo"}, fixedNow)

	assert.Contains(t, prompt, "2025-12-21 (Sunday)")
	assert.Contains(t, prompt, "The family has 3 children, ages 7, 6, and 3:")
	assert.Contains(t, prompt, "- Grayson (age 7): animals, science")
	assert.Contains(t, prompt, "- Avery (age 6): art")
	assert.Contains(t, prompt, "- Rowan (age 3): playgrounds")
	assert.Contains(t, prompt, WeatherHeading+"\nHeavy rain")
	assert.Contains(t, prompt, RecentVenuesClause+"Columbus Zoo")
	assert.NotContains(t, prompt, "lives near")
}

func TestBuildSystemPrompt_EmptyWeatherFallsBack(t *testing.T) {
	prompt := BuildSystemPrompt(nil, "   ", nil, fixedNow)
	assert.Contains(t, prompt, WeatherHeading+"\n"+WeatherUnavailable)
	assert.NotContains(t, prompt, "The family has")
}

func TestHandler_Execute(t *testing.T) {
	store := &fakeStore{venues: []string{"Columbus Zoo"}}
	h := newTestHandler(t, store, fakeForecaster{text: "Heavy rain"})

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, 30, store.days)
	assert.Equal(t, "2025-12-21", out.Date)
	assert.Equal(t, "What should we do this weekend?", out.UserMessage)
	assert.Equal(t, "Heavy rain", out.Weather)
	assert.False(t, out.WeatherDegraded)
	assert.Equal(t, []string{"Columbus Zoo"}, out.RecentVenues)
	assert.Contains(t, out.SystemPrompt, "ages 7, 6, and 3")
	assert.Contains(t, out.SystemPrompt, "The family lives near Columbus, OH.")
	assert.Contains(t, out.SystemPrompt, "bed at 19:30")
	assert.Contains(t, out.SystemPrompt, "Columbus Zoo")
}

func TestHandler_ExecuteIsRepeatable(t *testing.T) {
	h := newTestHandler(t, &fakeStore{venues: []string{"Metro Parks"}}, fakeForecaster{text: "Cloudy"})

	first, err := h.Execute(context.Background(), nil)
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.SystemPrompt, second.SystemPrompt)
}

func TestHandler_WeatherFailureDegrades(t *testing.T) {
	h := newTestHandler(t, &fakeStore{}, fakeForecaster{err: errors.New("401 unauthorized")})

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.True(t, out.WeatherDegraded)
	assert.Equal(t, WeatherUnavailable, out.Weather)
	assert.Contains(t, out.SystemPrompt, WeatherUnavailable)
	assert.False(t, strings.Contains(out.SystemPrompt, "Recently visited"))
}

func TestHandler_TodayOverride(t *testing.T) {
	h := newTestHandler(t, &fakeStore{}, fakeForecaster{text: "Sunny"})

	out, err := h.Execute(context.Background(), &Input{Today: "2026-04-27"})
	require.NoError(t, err)
	assert.Equal(t, "2026-04-27", out.Date)
	assert.Contains(t, out.SystemPrompt, "- Grayson (age 8)")

	_, err = h.Execute(context.Background(), &Input{Today: "next saturday"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDate))
}
