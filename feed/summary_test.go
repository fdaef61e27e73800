package feed

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	long := strings.Repeat("a", 150)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long description truncated", long, long[:100] + "..."},
		{"short description unchanged", strings.Repeat("b", 50), strings.Repeat("b", 50)},
		{"exactly at limit unchanged", strings.Repeat("c", 100), strings.Repeat("c", 100)},
		{"empty string unchanged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.in); got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarize_MultibyteSafe(t *testing.T) {
	in := strings.Repeat("ü", 120)
	got := Summarize(in)
	want := strings.Repeat("ü", 100) + "..."
	if got != want {
		t.Errorf("Summarize() = %q, want %q", got, want)
	}
}
