// internal/tasks/delivery/format-output/render.go
package formatoutput

import (
	"regexp"
	"strings"
)

type span struct {
	Text string
	Bold bool
}

type block struct {
	Kind  string // heading | list | paragraph
	Spans []span
	Items [][]span
}

var (
	headingLine = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	bulletLine  = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+(.*)$`)
	boldRun     = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
)

// parseBlocks reads the small Markdown subset models write: headings, bullet
// or numbered lists, paragraphs and bold runs. Everything else stays literal.
func parseBlocks(text string) []block {
	var blocks []block
	var para []string

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, block{Kind: "paragraph", Spans: parseSpans(strings.Join(para, " "))})
			para = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case headingLine.MatchString(line):
			flush()
			blocks = append(blocks, block{Kind: "heading", Spans: parseSpans(headingLine.FindStringSubmatch(line)[1])})
		case bulletLine.MatchString(line):
			flush()
			item := parseSpans(bulletLine.FindStringSubmatch(line)[1])
			if n := len(blocks); n > 0 && blocks[n-1].Kind == "list" {
				blocks[n-1].Items = append(blocks[n-1].Items, item)
			} else {
				blocks = append(blocks, block{Kind: "list", Items: [][]span{item}})
			}
		default:
			para = append(para, line)
		}
	}
	flush()
	return blocks
}

func parseSpans(line string) []span {
	var spans []span
	last := 0
	for _, m := range boldRun.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			spans = append(spans, span{Text: line[last:m[0]]})
		}
		start, end := m[2], m[3]
		if start < 0 {
			start, end = m[4], m[5]
		}
		spans = append(spans, span{Text: line[start:end], Bold: true})
		last = m[1]
	}
	if last < len(line) {
		spans = append(spans, span{Text: line[last:]})
	}
	return spans
}
