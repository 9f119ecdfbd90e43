package domain

import "testing"

// TestRunResultClean checks the clean-outcome predicate.
func TestRunResultClean(t *testing.T) {
	tests := []struct {
		name   string
		result RunResult
		want   bool
	}{
		{"no warnings", RunResult{OutputFiles: []string{"a.png"}}, true},
		{"with warnings", RunResult{OutputFiles: []string{"a.png"}, Warnings: []string{"synthesize line 2: model refused"}}, false},
		{"cancelled", RunResult{Cancelled: true}, false},
		{"cancelled with warnings", RunResult{Cancelled: true, Warnings: []string{"w"}}, false},
	}

	for _, tt := range tests {
		if got := tt.result.Clean(); got != tt.want {
			t.Fatalf("%s: Clean() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
