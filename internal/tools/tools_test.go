package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	commonhttp "weekend-planner/internal/common/http"
	"weekend-planner/internal/common/logger"
	"weekend-planner/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTool struct {
	name   string
	output string
}

func (s staticTool) Name() string                      { return s.name }
func (s staticTool) Description() string               { return "static " + s.name }
func (s staticTool) Invoke(ctx context.Context) string { return s.output }

type fakeTextModel struct {
	reply    string
	err      error
	calls    int32
	lastUser string
}

func (f *fakeTextModel) Complete(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastUser = user
	return f.reply, f.err
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(staticTool{name: "b"}, staticTool{name: "a"}, staticTool{name: "c"})
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"b", "a", "c"}, r.Names())

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Error(t, r.Register(staticTool{name: "a"}))
	assert.Error(t, r.Register(staticTool{name: ""}))

	list := r.List()
	list[0] = staticTool{name: "mutated"}
	assert.Equal(t, "b", r.List()[0].Name())
}

func TestExtractText(t *testing.T) {
	page := []byte(`<html><head><title>Events</title><style>.x{color:red}</style></head>
<body><script>var a = 1;</script><main><h1>Wildlights</h1>
<p>Nov   15 -
Jan 5</p><noscript>enable js</noscript></main></body></html>`)

	text, err := ExtractText(page, 0)
	require.NoError(t, err)
	assert.Equal(t, "Events\nWildlights\nNov 15 - Jan 5", text)
}

func TestExtractText_TruncatesRunes(t *testing.T) {
	page := []byte("<p>" + strings.Repeat("é", 20) + "</p>")

	text, err := ExtractText(page, 8)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 8), text)
}

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantData bool
		wantLen  int
	}{
		{"events", `[{"title": "Penguin Walk"}, {"title": "Story Time"}]`, true, 2},
		{"empty list", `[]`, false, 0},
		{"error object", `{"error": "Failed to fetch"}`, false, 0},
		{"not json", `No structured events found.`, false, 0},
		{"broken array", `[{"title": `, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, ok := ParseEvents(tt.output)
			assert.Equal(t, tt.wantData, ok)
			assert.Len(t, events, tt.wantLen)
		})
	}
}

func testVenue(url string) registry.Venue {
	return registry.Venue{
		ID:          "zoo",
		ToolName:    "get_columbus_zoo_events",
		Description: "Zoo events",
		URL:         url,
		Venue:       "Columbus Zoo and Aquarium",
		Address:     "4850 Powell Rd, Powell, OH 43065",
		Focus:       []string{"Seasonal events"},
		Enabled:     true,
	}
}

func newScraper(t *testing.T, handler http.HandlerFunc, model *fakeTextModel, maxFailures int) (*ScraperTool, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	tool := NewScraperTool(testVenue(server.URL), ScraperConfig{
		MaxPageChars: 8000,
		MaxFailures:  maxFailures,
		OpenTimeout:  time.Minute,
	}, commonhttp.NewClient(5*time.Second, "test"), model, logger.NewTestLogger(t))
	return tool, &hits
}

func servePage(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(`<html><body><main><h2>Wildlights</h2><p>Holiday lights</p></main></body></html>`))
}

func TestScraperTool_Success(t *testing.T) {
	model := &fakeTextModel{reply: "```json\n[{\"title\": \"Wildlights\", \"date\": \"Nov 15 - Jan 5\", \"cost\": null}]\n```"}
	tool, _ := newScraper(t, servePage, model, 2)

	out := tool.Invoke(context.Background())

	events, ok := ParseEvents(out)
	require.True(t, ok, out)
	require.Len(t, events, 1)
	assert.Equal(t, "Wildlights", events[0].Title)
	assert.Equal(t, "Columbus Zoo and Aquarium", events[0].Venue)
	assert.Equal(t, "4850 Powell Rd, Powell, OH 43065", events[0].Address)
	assert.Contains(t, out, "\n  ")

	assert.Contains(t, model.lastUser, "Wildlights")
	assert.Contains(t, model.lastUser, "Focus on:\n1. Seasonal events")
	assert.Contains(t, model.lastUser, `- venue: Always "Columbus Zoo and Aquarium"`)
}

func TestScraperTool_FailuresBecomeErrorObjects(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		model   *fakeTextModel
		want    string
	}{
		{
			name:    "http status",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			model:   &fakeTextModel{},
			want:    "unexpected status 502",
		},
		{
			name:    "empty page",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html><script>x()</script></html>")) },
			model:   &fakeTextModel{},
			want:    "EMPTY_PAGE",
		},
		{
			name:    "model error",
			handler: servePage,
			model:   &fakeTextModel{err: errors.New("rate limited")},
			want:    "SCRAPER_REQUEST_FAILED",
		},
		{
			name:    "not an array",
			handler: servePage,
			model:   &fakeTextModel{reply: `{"events": []}`},
			want:    "INVALID_EVENTS",
		},
		{
			name:    "wrong field type",
			handler: servePage,
			model:   &fakeTextModel{reply: `[{"title": 42}]`},
			want:    "INVALID_EVENTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, _ := newScraper(t, tt.handler, tt.model, 5)

			out := tool.Invoke(context.Background())

			assert.True(t, strings.HasPrefix(out, `{"error":`), out)
			assert.Contains(t, out, tt.want)
			_, ok := ParseEvents(out)
			assert.False(t, ok)
		})
	}
}

func TestScraperTool_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	tool, hits := newScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, &fakeTextModel{}, 2)

	tool.Invoke(context.Background())
	tool.Invoke(context.Background())
	out := tool.Invoke(context.Background())

	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Contains(t, out, "circuit breaker is open")
}

func TestNewScraperRegistry(t *testing.T) {
	reg := &registry.VenueRegistry{Venues: []registry.Venue{
		testVenue("https://columbuszoo.org/events"),
		{ID: "wilds", ToolName: "get_wilds_events", URL: "https://thewilds.org/events/", Venue: "The Wilds", Enabled: false},
		{ID: "cosi", ToolName: "get_cosi_events", URL: "https://cosi.org/events", Venue: "COSI", Enabled: true},
	}}

	r, err := NewScraperRegistry(reg, ScraperConfig{MaxPageChars: 8000}, commonhttp.NewClient(time.Second, ""), &fakeTextModel{}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"get_columbus_zoo_events", "get_cosi_events"}, r.Names())

	cosi, ok := r.Get("get_cosi_events")
	require.True(t, ok)
	assert.Equal(t, "Get upcoming events from COSI.", cosi.Description())
}
