package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	autoURLRe        = regexp.MustCompile(`^(?:https?://|www\.)[^\s<>()]+`)
	currencyNumberRe = regexp.MustCompile(`^\d[\d,]*(?:\.\d+)?$`)
)

const escapable = "\\`*_{}[]()#+-.!|$"

// Resolver tokenizes a line of text into styled spans. Zero value disables
// inline math; AnchorForIndex may be nil when no citations are present.
type Resolver struct {
	MathEnable     bool
	InlineDollar   bool
	AnchorForIndex func(idx int) string
}

// Resolve tokenizes text into spans. Every scan position strictly advances,
// unmatched delimiters are emitted as literal characters.
func (r *Resolver) Resolve(text string) []Span {
	return r.resolve(text, Style{})
}

func (r *Resolver) resolve(text string, style Style) []Span {
	var spans []Span
	i, n := 0, len(text)

	appendText := func(s string) {
		if len(s) == 0 {
			return
		}
		// coalesce adjacent plain runs
		if len(spans) > 0 && spans[len(spans)-1].Kind == SpanText && spans[len(spans)-1].Style == style {
			spans[len(spans)-1].Text += s
			return
		}
		spans = append(spans, Span{Kind: SpanText, Text: s, Style: style})
	}

	for i < n {
		// image: ![alt](url)
		if strings.HasPrefix(text[i:], "![") {
			if alt, url, next, ok := parseBracketPair(text, i+1); ok {
				url = strings.TrimSpace(url)
				// allow angle-bracket wrapped URLs: ![](</api/...>)
				if len(url) >= 2 && strings.HasPrefix(url, "<") && strings.HasSuffix(url, ">") {
					url = strings.TrimSpace(url[1 : len(url)-1])
				}
				spans = append(spans, Span{Kind: SpanImage, Alt: alt, URL: url})
				i = next
				continue
			}
		}
		// inline code, contents verbatim
		if text[i] == '`' {
			if j := strings.IndexByte(text[i+1:], '`'); j != -1 {
				spans = append(spans, Span{Kind: SpanCode, Text: text[i+1 : i+1+j]})
				i = i + 1 + j + 1
				continue
			}
		}
		// inline equation \(...\)
		if strings.HasPrefix(text[i:], `\(`) {
			if j := strings.Index(text[i+2:], `\)`); j != -1 {
				spans = append(spans, Span{Kind: SpanMath, Text: text[i+2 : i+2+j], Style: style})
				i = i + 2 + j + 2
				continue
			}
		}
		// backslash escapes
		if text[i] == '\\' {
			if i+1 < n && strings.IndexByte(escapable, text[i+1]) != -1 {
				appendText(string(text[i+1]))
				i += 2
				continue
			}
			appendText(`\`)
			i++
			continue
		}
		// long runs of _, * or ~ are dividers, not emphasis
		if text[i] == '_' || text[i] == '*' || text[i] == '~' {
			run := runLength(text, i, text[i])
			if run >= 4 {
				appendText(text[i : i+run])
				i += run
				continue
			}
		}
		// inline $...$ math, conservative
		if text[i] == '$' && r.MathEnable && r.InlineDollar {
			if inner, next, ok := r.matchDollarMath(text, i); ok {
				spans = append(spans, Span{Kind: SpanMath, Text: inner, Style: style})
				i = next
				continue
			}
			appendText("$")
			i++
			continue
		}
		// emphasis pairs recurse with the corresponding flag set
		if strings.HasPrefix(text[i:], "~~") {
			if j := strings.Index(text[i+2:], "~~"); j != -1 {
				st := style
				st.Strike = true
				spans = append(spans, r.resolve(text[i+2:i+2+j], st)...)
				i = i + 2 + j + 2
				continue
			}
		}
		if strings.HasPrefix(text[i:], "**") {
			if j := strings.Index(text[i+2:], "**"); j != -1 {
				st := style
				st.Bold = true
				spans = append(spans, r.resolve(text[i+2:i+2+j], st)...)
				i = i + 2 + j + 2
				continue
			}
		}
		if strings.HasPrefix(text[i:], "__") {
			if j := strings.Index(text[i+2:], "__"); j != -1 {
				st := style
				st.Bold = true
				spans = append(spans, r.resolve(text[i+2:i+2+j], st)...)
				i = i + 2 + j + 2
				continue
			}
		}
		if text[i] == '*' && (i+1 >= n || text[i+1] != '*') {
			if j := strings.IndexByte(text[i+1:], '*'); j != -1 {
				st := style
				st.Italic = true
				spans = append(spans, r.resolve(text[i+1:i+1+j], st)...)
				i = i + 1 + j + 1
				continue
			}
		}
		if text[i] == '_' && (i+1 >= n || text[i+1] != '_') {
			if j := strings.IndexByte(text[i+1:], '_'); j != -1 {
				st := style
				st.Italic = true
				spans = append(spans, r.resolve(text[i+1:i+1+j], st)...)
				i = i + 1 + j + 1
				continue
			}
		}
		// explicit link or citation marker
		if text[i] == '[' {
			if label, url, next, ok := parseBracketPair(text, i); ok {
				spans = append(spans, Span{Kind: SpanLink, Text: label, URL: url})
				i = next
				continue
			}
			if close := strings.IndexByte(text[i+1:], ']'); close != -1 {
				inner := strings.TrimSpace(text[i+1 : i+1+close])
				if idx, err := strconv.Atoi(inner); err == nil && isAllDigits(inner) && r.AnchorForIndex != nil {
					if anchor := r.AnchorForIndex(idx); anchor != "" {
						spans = append(spans, Span{Kind: SpanCrossRef, Text: "[" + strconv.Itoa(idx) + "]", Anchor: anchor})
						i = i + 1 + close + 1
						continue
					}
				}
			}
		}
		// bare autolink
		if m := autoURLRe.FindString(text[i:]); m != "" {
			trimmed := strings.TrimRight(m, ".,;:!?)]}")
			if normalized := NormalizeURL(trimmed); normalized != "" {
				spans = append(spans, Span{Kind: SpanLink, Text: trimmed, URL: normalized})
				if suffix := m[len(trimmed):]; suffix != "" {
					appendText(suffix)
				}
			} else {
				appendText(m)
			}
			i += len(m)
			continue
		}
		// plain text up to next special character
		j := nextSpecial(text, i)
		if j == i {
			// unmatched special character, treat literally to guarantee progress
			appendText(string(text[i]))
			i++
		} else {
			appendText(text[i:j])
			i = j
		}
	}
	return spans
}

// matchDollarMath applies the currency disambiguation heuristics at an
// opening dollar and reports the enclosed latex on success.
func (r *Resolver) matchDollarMath(text string, i int) (inner string, next int, ok bool) {
	n := len(text)
	// block math uses $$ on its own line, never inline
	if strings.HasPrefix(text[i:], "$$") {
		return "", 0, false
	}
	// no whitespace right after opening, no alnum right before it
	if i+1 >= n || isSpaceByte(text[i+1]) {
		return "", 0, false
	}
	if i > 0 && isAlnumByte(text[i-1]) {
		return "", 0, false
	}
	j := i + 1
	for {
		k := strings.IndexByte(text[j:], '$')
		if k == -1 {
			return "", 0, false
		}
		j += k
		// skip escaped dollars inside
		if j > 0 && text[j-1] == '\\' {
			j++
			continue
		}
		break
	}
	inner = text[i+1 : j]
	if inner == "" || strings.Contains(inner, "\n") || isSpaceByte(inner[0]) || isSpaceByte(inner[len(inner)-1]) {
		return "", 0, false
	}
	// treat "$5" as currency more often than math
	if currencyNumberRe.MatchString(inner) && (i == 0 || isSpaceByte(text[i-1])) {
		return "", 0, false
	}
	// a digit immediately after the closing $ marks a price, not an equation
	if j+1 < n && text[j+1] >= '0' && text[j+1] <= '9' {
		return "", 0, false
	}
	return inner, j + 1, true
}

// parseBracketPair matches [label](url) starting at the opening bracket and
// returns the position just past the closing parenthesis.
func parseBracketPair(text string, i int) (label, url string, next int, ok bool) {
	n := len(text)
	close := strings.IndexByte(text[i+1:], ']')
	if close == -1 {
		return "", "", 0, false
	}
	close += i + 1
	if close+1 >= n || text[close+1] != '(' {
		return "", "", 0, false
	}
	closeParen := strings.IndexByte(text[close+2:], ')')
	if closeParen == -1 {
		return "", "", 0, false
	}
	closeParen += close + 2
	return text[i+1 : close], text[close+2 : closeParen], closeParen + 1, true
}

// NormalizeURL prepends a scheme to bare www. links and trims the trailing
// sentence punctuation that often follows URLs in prose.
func NormalizeURL(url string) string {
	u := strings.TrimSpace(url)
	if strings.HasPrefix(strings.ToLower(u), "www.") {
		u = "https://" + u
	}
	return strings.TrimRight(u, ".,;:!?)]}")
}

func nextSpecial(text string, start int) int {
	n := len(text)
	pos := n
	for _, marker := range []string{"`", "!", "[", "*", "_", "~", "$", `\`, "http://", "https://", "www."} {
		if idx := strings.Index(text[start:], marker); idx != -1 && start+idx < pos {
			pos = start + idx
		}
	}
	return pos
}

func runLength(text string, i int, ch byte) int {
	n := 0
	for i+n < len(text) && text[i+n] == ch {
		n++
	}
	return n
}

func isSpaceByte(b byte) bool {
	return unicode.IsSpace(rune(b))
}

func isAlnumByte(b byte) bool {
	r := rune(b)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
