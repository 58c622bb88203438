package formatoutput

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekend-planner/internal/common/logger"
)

const sample = `## Saturday
**Columbus Zoo**: Wildlights runs 5-9 PM.
Bring warm coats.

- Penguin <Walk> & cocoa
- Carousel rides
1. Arrive early

Have fun!`

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{SubjectPrefix: "Weekend plans", AppName: "weekend-planner"}, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	out, err := newTestHandler(t).Execute(context.Background(), &Input{RawText: sample, Date: "2025-12-20"})
	require.NoError(t, err)

	assert.Equal(t, "Weekend plans for 2025-12-20", out.Subject)
	assert.Equal(t, sample+"\n", out.Text)

	assert.Contains(t, out.HTML, "<title>Weekend plans for 2025-12-20</title>")
	assert.Contains(t, out.HTML, "<h2 style=\"font-size: 16px;\">Saturday</h2>")
	assert.Contains(t, out.HTML, "<p><strong>Columbus Zoo</strong>: Wildlights runs 5-9 PM. Bring warm coats.</p>")
	assert.Contains(t, out.HTML, "<li>Penguin &lt;Walk&gt; &amp; cocoa</li>")
	assert.Contains(t, out.HTML, "<li>Arrive early</li>")
	assert.Contains(t, out.HTML, "<p>Have fun!</p>")
	assert.Contains(t, out.HTML, "Sent by weekend-planner")
	assert.NotContains(t, out.HTML, "<Walk>")
}

func TestHandler_SubjectWithoutDate(t *testing.T) {
	h := NewHandler(&Config{}, logger.NewNoOpLogger())
	out, err := h.Execute(context.Background(), &Input{RawText: "Go sledding."})
	require.NoError(t, err)
	assert.Equal(t, "Weekend plans", out.Subject)
	assert.NotContains(t, out.HTML, "Sent by")
}

func TestHandler_EmptyRecommendation(t *testing.T) {
	for _, input := range []*Input{nil, {RawText: "  \n"}} {
		_, err := newTestHandler(t).Execute(context.Background(), input)
		assert.True(t, errors.Is(err, ErrEmptyRecommendation))
	}
}

func TestParseBlocks(t *testing.T) {
	blocks := parseBlocks(sample)
	require.Len(t, blocks, 4)

	assert.Equal(t, "heading", blocks[0].Kind)
	assert.Equal(t, "paragraph", blocks[1].Kind)
	assert.Equal(t, []span{
		{Text: "Columbus Zoo", Bold: true},
		{Text: ": Wildlights runs 5-9 PM. Bring warm coats."},
	}, blocks[1].Spans)
	assert.Equal(t, "list", blocks[2].Kind)
	assert.Len(t, blocks[2].Items, 3)
	assert.Equal(t, "paragraph", blocks[3].Kind)
}

func TestParseSpans(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []span
	}{
		{"plain", "just text", []span{{Text: "just text"}}},
		{"underscore bold", "a __b__ c", []span{{Text: "a "}, {Text: "b", Bold: true}, {Text: " c"}}},
		{"unclosed", "a **b", []span{{Text: "a **b"}}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSpans(tt.line))
		})
	}
}
