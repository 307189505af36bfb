package llm

import (
	"fmt"
	"strings"
)

// Normalize reduces a response to its canonical text. It never fails: text
// blocks are joined with newlines, other block kinds are skipped, and payloads
// of an unexpected shape fall back to their printed form.
func Normalize(resp Response) string {
	switch c := resp.Content.(type) {
	case nil:
		return ""
	case PlainText:
		return strings.TrimSpace(string(c))
	case BlockSequence:
		parts := make([]string, 0, len(c))
		for _, b := range c {
			if b == nil || b.Kind() != KindText {
				continue
			}
			// A text-kind block without a text body contributes an empty line.
			tb, _ := b.(TextBlock)
			parts = append(parts, tb.Text)
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	case RawContent:
		if c.Value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(c.Value))
	default:
		return strings.TrimSpace(fmt.Sprint(c))
	}
}
