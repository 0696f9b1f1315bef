// Package suggestions turns free-form advice text into an ordered list of tips.
package suggestions

import (
	"regexp"
	"strings"
)

var (
	markerPattern = regexp.MustCompile(`^[-•]?\s*\d+\.|^[-•]`)
	markerPrefix  = regexp.MustCompile(`^(?:[-•]\s*)?\d+\.\s*|^[-•]\s*`)
)

// Parse splits advice text into tips. Lines starting with "-", "•" or "N." open
// a new tip, even when nothing follows the marker; any other line is a
// soft-wrapped continuation of the previous one.
// Parse never fails: empty input yields an empty slice.
func Parse(text string) []string {
	items := []string{}
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if markerPattern.MatchString(line) {
			items = append(items, strings.TrimSpace(markerPrefix.ReplaceAllString(line, "")))
			continue
		}
		if len(items) == 0 {
			items = append(items, line)
			continue
		}
		last := len(items) - 1
		items[last] = strings.TrimSpace(items[last] + " " + line)
	}
	return items
}

// Title is the short heading shown above a tip: the text before the first colon.
func Title(tip string) string {
	head, _, _ := strings.Cut(tip, ":")
	head = strings.TrimSpace(head)
	if r := []rune(head); len(r) > 120 {
		head = string(r[:120])
	}
	return head
}

// Format renders tips back into one bulleted line per tip. Parse(Format(tips))
// returns tips unchanged for tips produced by Parse from clean input.
func Format(tips []string) string {
	var sb strings.Builder
	for i, tip := range tips {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(tip)
	}
	return sb.String()
}
