package convert

import "testing"

func TestLangKey(t *testing.T) {
	tests := []struct {
		ui   string
		want string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"zh", "zh"},
		{"zh-CN", "zh"},
		{"zh-Hans", "zh"},
		{"zh-TW", "zh"},
		{"fr", "en"}, // unsupported languages fall back to english
		{"", "en"},
		{"  ", "en"},
		{"not-a-tag!!", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.ui, func(t *testing.T) {
			if got := langKey(tt.ui); got != tt.want {
				t.Errorf("langKey(%q) = %q, want %q", tt.ui, got, tt.want)
			}
		})
	}
}

func TestMsg(t *testing.T) {
	tests := []struct {
		name string
		lang string
		key  string
		args map[string]string
		want string
	}{
		{
			name: "english plain",
			lang: "en",
			key:  "converting",
			want: "Converting to Word document...",
		},
		{
			name: "english with placeholder",
			lang: "en",
			key:  "success",
			args: map[string]string{"filename": "chat.docx"},
			want: "Successfully exported to chat.docx",
		},
		{
			name: "chinese plain",
			lang: "zh",
			key:  "converting",
			want: "正在转换为 Word 文档...",
		},
		{
			name: "chinese with placeholder",
			lang: "zh",
			key:  "error_export",
			args: map[string]string{"error": "disk full"},
			want: "导出 Word 文档时出错: disk full",
		},
		{
			name: "unknown language falls back",
			lang: "fr",
			key:  "references",
			want: "References",
		},
		{
			name: "unknown key returns key",
			lang: "en",
			key:  "no_such_key",
			want: "no_such_key",
		},
		{
			name: "figure prefix localized",
			lang: "zh",
			key:  "figure_prefix",
			want: "图",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Msg(tt.lang, tt.key, tt.args); got != tt.want {
				t.Errorf("Msg(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}
