package synth

import "strings"

// Line is one sub-line scheduled for synthesis. Indices are assigned once
// after wrapping and stay stable for the lifetime of a run.
type Line struct {
	Index int
	Text  string
	Blank bool
}

// Wrap splits a source line into sub-lines of at most width characters using
// greedy word wrapping. Breaks happen at whitespace only: a single word
// longer than width is placed on its own sub-line and allowed to overflow.
func Wrap(line string, width int) []string {
	if width <= 0 {
		return []string{line}
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	var (
		out     []string
		current []rune
	)
	for _, word := range words {
		runes := []rune(word)
		switch {
		case len(current) == 0:
			current = runes
		case len(current)+1+len(runes) <= width:
			current = append(current, ' ')
			current = append(current, runes...)
		default:
			out = append(out, string(current))
			current = runes
		}
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}

// PrepareLines splits text into synthesis units: source lines within the
// width limit pass through, longer ones are word-wrapped, and empty lines
// become blank placeholders that render as fixed-size vertical spacing.
func PrepareLines(text string, maxWidth int) []Line {
	var lines []Line
	for _, src := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(src) == "" {
			lines = append(lines, Line{Index: len(lines), Blank: true})
			continue
		}
		if len([]rune(src)) <= maxWidth {
			lines = append(lines, Line{Index: len(lines), Text: src})
			continue
		}
		for _, sub := range Wrap(src, maxWidth) {
			lines = append(lines, Line{Index: len(lines), Text: sub})
		}
	}
	return lines
}
