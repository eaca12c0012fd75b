package convert

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Weekly report", "Weekly report"},
		{"reserved characters", `a/b\c:d*e?f"g<h>i|j`, "abcdefghij"},
		{"emoji stripped", "Rocket 🚀 launch", "Rocket launch"},
		{"flag sequence", "Trip 🇺🇸 notes", "Trip notes"},
		{"keycap sequence", "Top 1️⃣ pick", "Top 1 pick"},
		{"skin tone modifier", "Wave 👋🏽 hello", "Wave hello"},
		{"whitespace collapsed", "a \t  b\n\nc", "a b c"},
		{"dots trimmed", "...name...", "name"},
		{"only emoji", "🚀🎉", ""},
		{"cjk preserved", "会议纪要：周报", "会议纪要：周报"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanFileName_LengthCap(t *testing.T) {
	long := strings.Repeat("x", 80)
	got := CleanFileName(long)
	if utf8.RuneCountInString(got) != 50 {
		t.Errorf("length = %d runes, want 50", utf8.RuneCountInString(got))
	}

	// the cap counts runes, not bytes
	cjk := strings.Repeat("字", 80)
	got = CleanFileName(cjk)
	if utf8.RuneCountInString(got) != 50 {
		t.Errorf("cjk length = %d runes, want 50", utf8.RuneCountInString(got))
	}
}

func TestDeriveFileName(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		title         string
		user          string
		transliterate bool
		want          string
	}{
		{"from title", "Project kickoff", "alice", false, "Project kickoff.docx"},
		{"empty title falls back", "", "alice", false, "alice_20250314.docx"},
		{"emoji only title falls back", "🚀🎉", "bob", false, "bob_20250314.docx"},
		{"transliterated", "Доклад о проекте", "alice", true, "doklad-o-proekte.docx"},
		{"transliterated ascii", "Project Kickoff", "alice", true, "project-kickoff.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveFileName(tt.title, tt.user, tt.transliterate, now)
			if got != tt.want {
				t.Errorf("DeriveFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
