package bootstrap

import "handsynth/internal/domain"

// styleCatalog lists the handwriting styles the stroke model was trained
// on. Indices are stable; the model resolves them to its internal priming
// sequences.
var styleCatalog = []domain.StyleOption{
	{Index: 0, Name: "Classic", Description: "Upright, evenly spaced cursive."},
	{Index: 1, Name: "Slanted", Description: "Right-leaning cursive with long ascenders."},
	{Index: 2, Name: "Compact", Description: "Tight letterforms, narrow spacing."},
	{Index: 3, Name: "Loose", Description: "Wide, airy spacing between words."},
	{Index: 4, Name: "Angular", Description: "Sharp joins, minimal loops."},
	{Index: 5, Name: "Rounded", Description: "Large loops and soft curves."},
	{Index: 6, Name: "Formal", Description: "Consistent baseline, careful strokes."},
	{Index: 7, Name: "Casual", Description: "Uneven baseline, relaxed strokes."},
	{Index: 8, Name: "Fine", Description: "Small, precise letterforms."},
	{Index: 9, Name: "Bold", Description: "Heavy strokes, emphatic forms."},
	{Index: 10, Name: "Flowing", Description: "Continuous joins across words."},
	{Index: 11, Name: "Print-like", Description: "Mostly disconnected letterforms."},
}

// StyleCatalog returns a copy of the available style options.
func StyleCatalog() []domain.StyleOption {
	out := make([]domain.StyleOption, len(styleCatalog))
	copy(out, styleCatalog)
	return out
}

// StyleByIndex resolves a style option by its stable index.
func StyleByIndex(index int) (domain.StyleOption, bool) {
	for _, style := range styleCatalog {
		if style.Index == index {
			return style, true
		}
	}
	return domain.StyleOption{}, false
}
