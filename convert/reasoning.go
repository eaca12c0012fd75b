package convert

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankRunRe = regexp.MustCompile(`\n{4,}`)

// reasoning containers interleaved into assistant output by the chat
// frontend. None of them belong in the exported document.
const maxStripPasses = 10

// StripReasoning removes reasoning containers from assistant markdown:
// <details type="reasoning">, <think> and <analysis>, including nested
// occurrences, iterated to a fixed point. Surplus blank lines left by the
// removal are collapsed.
func StripReasoning(text string) string {
	if text == "" {
		return text
	}
	cur := text
	for i := 0; i < maxStripPasses; i++ {
		next := stripReasoningOnce(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return blankRunRe.ReplaceAllString(cur, "\n\n\n")
}

// stripReasoningOnce drops the outermost reasoning containers in one
// tokenizer pass. An unterminated container leaves the text unchanged so
// truncated transcripts survive intact.
func stripReasoningOnce(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var out strings.Builder
	out.Grow(len(s))

	depth := 0
	container := ""
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()
		switch tt {
		case html.StartTagToken:
			tag, hasAttr := z.TagName()
			name := string(tag)
			if depth == 0 && isReasoningContainer(name, hasAttr, z) {
				container = name
				depth = 1
				continue
			}
			if depth > 0 && name == container {
				depth++
				continue
			}
		case html.EndTagToken:
			tag, _ := z.TagName()
			if depth > 0 && string(tag) == container {
				depth--
				continue
			}
		}
		if depth == 0 {
			out.Write(raw)
		}
	}
	if depth > 0 {
		return s
	}
	return out.String()
}

func isReasoningContainer(name string, hasAttr bool, z *html.Tokenizer) bool {
	switch name {
	case "think", "analysis":
		return true
	case "details":
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if strings.EqualFold(string(key), "type") && strings.EqualFold(string(val), "reasoning") {
				return true
			}
		}
	}
	return false
}
