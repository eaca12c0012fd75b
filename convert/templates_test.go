package convert

import (
	"testing"
	"time"

	"mdc/config"
)

func TestExpandFileName(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		title    string
		want     string
		wantErr  bool
	}{
		{"empty template falls back", "", "Project kickoff", "Project kickoff.docx", false},
		{"simple substitution", "{{.UserName}}-{{.Date}}", "ignored", "alice-2025-03-14.docx", false},
		{"sprig functions", `{{.Title | lower | replace " " "_"}}`, "Project Kickoff", "project_kickoff.docx", false},
		{"extension kept", "{{.Title}}.docx", "report", "report.docx", false},
		{"cleans to empty falls back", `{{"🚀"}}`, "Project kickoff", "Project kickoff.docx", false},
		{"bad template", "{{.Title", "x", "", true},
		{"unknown field", "{{.Nope}}", "x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &config.DocumentConfig{OutputNameTemplate: tt.template}
			got, err := expandFileName(doc, tt.title, "Stored", "c1", "alice", now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expandFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
