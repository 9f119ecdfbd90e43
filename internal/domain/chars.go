package domain

import (
	"fmt"
	"strings"
)

// alphabet is the exact character set the stroke model was trained on.
// Uppercase Q and X are absent; NormalizeText downcases them instead.
const alphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPRSTUVWYZ" +
	"0123456789" +
	`!"#'(),-.:;?` +
	" \n"

var validChars = func() map[rune]struct{} {
	set := make(map[rune]struct{}, len(alphabet))
	for _, r := range alphabet {
		set[r] = struct{}{}
	}
	return set
}()

// ErrEmptyText is returned when a submission has no content after trimming.
var ErrEmptyText = fmt.Errorf("text is empty")

// InvalidCharError reports the first character outside the model alphabet.
type InvalidCharError struct {
	Char rune
}

// Error formats the offending character for user display.
func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid character %q: valid symbols are a-z A-Z 0-9 !\"#'(),-.:;?", e.Char)
}

// ValidChar reports whether the stroke model can synthesize r.
func ValidChar(r rune) bool {
	_, ok := validChars[r]
	return ok
}

// NormalizeText converts line endings and downcases the two uppercase
// letters the model cannot draw.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "Q", "q")
	return strings.ReplaceAll(text, "X", "x")
}

// ValidateText checks a normalized submission before a run is created.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	for _, r := range text {
		if !ValidChar(r) {
			return &InvalidCharError{Char: r}
		}
	}
	return nil
}

// FilterText drops characters outside the model alphabet and returns the
// filtered text together with the distinct removed characters in order of
// first appearance.
func FilterText(text string) (string, []rune) {
	var (
		b       strings.Builder
		removed []rune
		seen    = make(map[rune]struct{})
	)
	for _, r := range text {
		if ValidChar(r) {
			b.WriteRune(r)
			continue
		}
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			removed = append(removed, r)
		}
	}
	return b.String(), removed
}
