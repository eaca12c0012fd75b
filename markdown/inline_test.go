package markdown

import (
	"strings"
	"testing"
)

func plainText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case SpanText, SpanCode, SpanLink, SpanCrossRef, SpanMath:
			sb.WriteString(s.Text)
		case SpanImage:
			sb.WriteString(s.Alt)
		}
	}
	return sb.String()
}

func TestResolveEscaping(t *testing.T) {
	r := &Resolver{}
	spans := r.Resolve(`\*not bold\*`)
	if got := plainText(spans); got != "*not bold*" {
		t.Errorf("Resolve() = %q, want %q", got, "*not bold*")
	}
	for _, s := range spans {
		if s.Style.Bold {
			t.Error("escaped asterisks must not produce bold styling")
		}
	}
}

func TestResolveEmphasis(t *testing.T) {
	r := &Resolver{}

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, spans []Span)
	}{
		{
			name:  "bold",
			input: "Hello **world**.",
			check: func(t *testing.T, spans []Span) {
				var bold []Span
				for _, s := range spans {
					if s.Style.Bold {
						bold = append(bold, s)
					}
				}
				if len(bold) != 1 || bold[0].Text != "world" {
					t.Errorf("expected single bold run %q, got %+v", "world", bold)
				}
			},
		},
		{
			name:  "nested bold italic",
			input: "**bold *and italic***",
			check: func(t *testing.T, spans []Span) {
				found := false
				for _, s := range spans {
					if s.Style.Bold && s.Style.Italic && s.Text == "and italic" {
						found = true
					}
				}
				if !found {
					t.Errorf("expected bold+italic run, got %+v", spans)
				}
			},
		},
		{
			name:  "strike",
			input: "~~gone~~",
			check: func(t *testing.T, spans []Span) {
				if len(spans) != 1 || !spans[0].Style.Strike || spans[0].Text != "gone" {
					t.Errorf("expected strike run, got %+v", spans)
				}
			},
		},
		{
			name:  "long underscore run stays literal",
			input: "fill in ____ here",
			check: func(t *testing.T, spans []Span) {
				if got := plainText(spans); got != "fill in ____ here" {
					t.Errorf("plainText() = %q", got)
				}
				for _, s := range spans {
					if s.Style.Italic || s.Style.Bold {
						t.Error("divider runs must not style")
					}
				}
			},
		},
		{
			name:  "inline code verbatim",
			input: "use `**raw**` here",
			check: func(t *testing.T, spans []Span) {
				found := false
				for _, s := range spans {
					if s.Kind == SpanCode && s.Text == "**raw**" {
						found = true
					}
				}
				if !found {
					t.Errorf("code span contents must not be rescanned, got %+v", spans)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, r.Resolve(tc.input))
		})
	}
}

func TestResolveDollarMath(t *testing.T) {
	r := &Resolver{MathEnable: true, InlineDollar: true}

	tests := []struct {
		name   string
		input  string
		isMath bool
		latex  string
	}{
		{"simple equation", "$x+y$", true, "x+y"},
		{"bare price", "$5", false, ""},
		{"decimal price", "$5.00", false, ""},
		{"price range", "between $5 and $10 total", false, ""},
		{"internal spaces rejected", "$ x $", false, ""},
		{"alnum before opening", "USD$5x$", false, ""},
		{"digit after closing", "$a$5", false, ""},
		{"equation mid-sentence", "so $E=mc^2$ holds", true, "E=mc^2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spans := r.Resolve(tc.input)
			var math []Span
			for _, s := range spans {
				if s.Kind == SpanMath {
					math = append(math, s)
				}
			}
			if tc.isMath {
				if len(math) != 1 || math[0].Text != tc.latex {
					t.Errorf("expected equation %q, got %+v", tc.latex, math)
				}
			} else if len(math) != 0 {
				t.Errorf("expected no equation, got %+v", math)
			}
		})
	}
}

func TestResolveLinks(t *testing.T) {
	r := &Resolver{}

	t.Run("explicit link", func(t *testing.T) {
		spans := r.Resolve("see [docs](https://example.com/a) now")
		found := false
		for _, s := range spans {
			if s.Kind == SpanLink && s.Text == "docs" && s.URL == "https://example.com/a" {
				found = true
			}
		}
		if !found {
			t.Errorf("link not resolved: %+v", spans)
		}
	})

	t.Run("autolink trims trailing punctuation", func(t *testing.T) {
		spans := r.Resolve("go to https://example.com/x. Done")
		var link *Span
		for i, s := range spans {
			if s.Kind == SpanLink {
				link = &spans[i]
			}
		}
		if link == nil || link.URL != "https://example.com/x" {
			t.Fatalf("expected trimmed autolink, got %+v", spans)
		}
		if got := plainText(spans); !strings.Contains(got, ". Done") {
			t.Errorf("trailing punctuation must be reattached as text, got %q", got)
		}
	})

	t.Run("www autolink gets scheme", func(t *testing.T) {
		spans := r.Resolve("visit www.example.com")
		found := false
		for _, s := range spans {
			if s.Kind == SpanLink && s.URL == "https://www.example.com" && s.Text == "www.example.com" {
				found = true
			}
		}
		if !found {
			t.Errorf("www autolink not normalized: %+v", spans)
		}
	})
}

func TestResolveCitations(t *testing.T) {
	anchors := map[int]string{1: "MDCRef1", 2: "MDCRef2"}
	r := &Resolver{AnchorForIndex: func(idx int) string { return anchors[idx] }}

	t.Run("known index", func(t *testing.T) {
		spans := r.Resolve("See [1].")
		found := false
		for _, s := range spans {
			if s.Kind == SpanCrossRef && s.Text == "[1]" && s.Anchor == "MDCRef1" {
				found = true
			}
		}
		if !found {
			t.Errorf("citation not resolved: %+v", spans)
		}
	})

	t.Run("unknown index stays literal", func(t *testing.T) {
		spans := r.Resolve("See [9].")
		for _, s := range spans {
			if s.Kind == SpanCrossRef {
				t.Errorf("unknown citation must stay literal: %+v", spans)
			}
		}
		if got := plainText(spans); got != "See [9]." {
			t.Errorf("plainText() = %q", got)
		}
	})
}

func TestResolveImages(t *testing.T) {
	r := &Resolver{}
	spans := r.Resolve("![alt text](</api/v1/files/abc/content>)")
	if len(spans) != 1 || spans[0].Kind != SpanImage {
		t.Fatalf("expected one image span, got %+v", spans)
	}
	if spans[0].Alt != "alt text" || spans[0].URL != "/api/v1/files/abc/content" {
		t.Errorf("angle brackets must be stripped: %+v", spans[0])
	}
}

func TestResolveTermination(t *testing.T) {
	r := &Resolver{MathEnable: true, InlineDollar: true}
	inputs := []string{
		"*", "**", "***", "_", "__", "~", "~~", "`", "$", "[", "![", "\\",
		strings.Repeat("*_~$`[", 200),
		"[unclosed](nope",
		"$unclosed",
		"\\(unclosed",
		strings.Repeat("$a$", 300),
	}
	for _, in := range inputs {
		spans := r.Resolve(in)
		// lossless for non-markup, guaranteed to return
		_ = spans
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"www.example.com", "https://www.example.com"},
		{"https://a.b/c.", "https://a.b/c"},
		{"https://a.b/c)]", "https://a.b/c"},
		{"  http://x  ", "http://x"},
	}
	for _, tc := range tests {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
