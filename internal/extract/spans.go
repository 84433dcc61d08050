package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// MarkParagraphs renders paragraphs the way the extraction adapters were
// trained: every paragraph wrapped in <p> tags, separated by single spaces.
func MarkParagraphs(paragraphs []string) string {
	marked := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		marked = append(marked, "<p> "+p+" </p>")
	}
	return strings.Join(marked, " ")
}

// ParseSpans splits raw model output into spans. The adapters answer with
// the original <p> paragraphs, so every <p> element is one span. Output
// without any <p> element falls back to one span per non-blank line.
// A model stuck in a loop repeats its last paragraph; identical trailing
// spans are collapsed into one.
func ParseSpans(output string) []string {
	spans, tagged := paragraphSpans(output)
	if !tagged {
		spans = lineSpans(output)
	}

	for len(spans) > 1 && spans[len(spans)-1] == spans[len(spans)-2] {
		spans = spans[:len(spans)-1]
	}
	return spans
}

func paragraphSpans(output string) ([]string, bool) {
	var (
		spans  []string
		buf    strings.Builder
		inside bool
		tagged bool
	)

	flush := func() {
		if text := collapse(buf.String()); text != "" {
			spans = append(spans, text)
		}
		buf.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(output))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; both end the output
			if inside {
				flush()
			}
			return spans, tagged
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				if inside {
					flush()
				}
				inside, tagged = true, true
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" && inside {
				flush()
				inside = false
			}
		case html.TextToken:
			if inside {
				buf.Write(z.Text())
				buf.WriteByte(' ')
			}
		}
	}
}

func lineSpans(output string) []string {
	var spans []string
	for line := range strings.Lines(output) {
		if text := collapse(line); text != "" {
			spans = append(spans, text)
		}
	}
	return spans
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
