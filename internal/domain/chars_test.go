package domain

import (
	"errors"
	"testing"
)

// TestNormalizeTextDowncasesUnsupportedUppercase checks Q/X handling.
func TestNormalizeTextDowncasesUnsupportedUppercase(t *testing.T) {
	got := NormalizeText("Quick Xylophone\r\nOK")
	want := "quick xylophone\nOK"
	if got != want {
		t.Fatalf("NormalizeText = %q, want %q", got, want)
	}
}

// TestValidateTextRejectsEmpty checks whitespace-only submissions.
func TestValidateTextRejectsEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t "} {
		if err := ValidateText(text); !errors.Is(err, ErrEmptyText) {
			t.Fatalf("ValidateText(%q) = %v, want ErrEmptyText", text, err)
		}
	}
}

// TestValidateTextReportsFirstInvalidChar checks alphabet enforcement.
func TestValidateTextReportsFirstInvalidChar(t *testing.T) {
	err := ValidateText("hello @world $")
	var invalid *InvalidCharError
	if !errors.As(err, &invalid) {
		t.Fatalf("ValidateText error = %v, want InvalidCharError", err)
	}
	if invalid.Char != '@' {
		t.Fatalf("invalid char = %q, want @", invalid.Char)
	}
}

// TestValidateTextAcceptsFullAlphabet checks every supported symbol.
func TestValidateTextAcceptsFullAlphabet(t *testing.T) {
	if err := ValidateText(`abz ARZ 09 !"#'(),-.:;?` + "\n."); err != nil {
		t.Fatalf("ValidateText = %v, want nil", err)
	}
}

// TestFilterTextRemovesAndReportsDistinctChars checks auto-remove mode.
func TestFilterTextRemovesAndReportsDistinctChars(t *testing.T) {
	filtered, removed := FilterText("a@b$c@")
	if filtered != "abc" {
		t.Fatalf("filtered = %q, want abc", filtered)
	}
	if len(removed) != 2 || removed[0] != '@' || removed[1] != '$' {
		t.Fatalf("removed = %q, want [@ $]", string(removed))
	}
}
