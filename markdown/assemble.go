package markdown

import (
	"regexp"
	"strings"
	"time"
)

var (
	headingRe       = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	unorderedItemRe = regexp.MustCompile(`^(\s*)[-*+]\s+(.+)$`)
	orderedItemRe   = regexp.MustCompile(`^(\s*)\d+[.)]\s+(.+)$`)
	horizontalRe    = regexp.MustCompile(`^[-*_]{3,}$`)
	quotePrefixRe   = regexp.MustCompile(`^>\s?`)
)

const progressInterval = 2 * time.Second

// Assembler drives the line-oriented block state machine. A fresh value is
// constructed per conversion, nothing is shared between runs.
type Assembler struct {
	Resolver *Resolver

	MathEnable     bool
	CaptionsEnable bool
	OptimizeLayout bool
	AvailableWidth int // twips, for table layout
	MinCellWidth   int // twips
	TopHeading     string
	Progress       func(percent int) // best effort, may be nil

	blocks []Block

	// pending state, at most one active at a time
	inList    bool
	listItems []ListItem
	ordered   bool
}

// Assemble runs a single forward scan over the transcript and returns the
// assembled document. No backtracking happens beyond consuming contiguous
// table and blockquote runs whole.
func (a *Assembler) Assemble(text string) *Document {
	lines := strings.Split(text, "\n")
	total := len(lines)

	if a.TopHeading != "" && !hasTopHeading(lines) {
		a.emit(Heading{Level: 1, Spans: a.Resolver.Resolve(a.TopHeading)})
	}

	var (
		inCode     bool
		codeLines  []string
		codeLang   string
		inMath     bool
		mathDelim  string
		mathLines  []string
		lastUpdate = time.Now()
	)

	i := 0
	for i < len(lines) {
		if a.Progress != nil && time.Since(lastUpdate) > progressInterval {
			a.Progress(i * 100 / total)
			lastUpdate = time.Now()
		}
		line := lines[i]

		// display math, single-line form or fence
		if !inCode && a.MathEnable {
			if latex, ok := extractSingleLineMath(line); ok {
				a.flushList()
				a.emitMath(latex)
				i++
				continue
			}
			if !inMath {
				stripped := strings.TrimSpace(line)
				if stripped == `\[` || stripped == "$$" {
					a.flushList()
					inMath = true
					mathDelim = stripped
					mathLines = nil
					i++
					continue
				}
			} else {
				stripped := strings.TrimSpace(line)
				closing := "$$"
				if mathDelim == `\[` {
					closing = `\]`
				}
				if stripped == closing {
					inMath = false
					a.emitMath(strings.TrimSpace(strings.Join(mathLines, "\n")))
					mathDelim = ""
					mathLines = nil
					i++
					continue
				}
				mathLines = append(mathLines, line)
				i++
				continue
			}
		}

		// code fences
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if !inCode {
				a.flushList()
				inCode = true
				codeLang = fenceLanguage(strings.TrimSpace(line)[3:])
				codeLines = nil
			} else {
				inCode = false
				a.emitFence(codeLang, strings.Join(codeLines, "\n"))
				codeLang = ""
				codeLines = nil
			}
			i++
			continue
		}
		if inCode {
			codeLines = append(codeLines, line)
			i++
			continue
		}

		// tables: consume the whole contiguous run
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			a.flushList()
			var tableLines []string
			for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "|") {
				tableLines = append(tableLines, lines[i])
				i++
			}
			if t, ok := a.Resolver.LayoutTable(tableLines, a.AvailableWidth, a.MinCellWidth); ok {
				a.emit(t)
			}
			continue
		}

		// headings
		if m := headingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			a.flushList()
			a.emit(Heading{Level: len(m[1]), Spans: a.Resolver.Resolve(m[2])})
			i++
			continue
		}

		// list items, flat indent computed from leading whitespace
		if m := unorderedItemRe.FindStringSubmatch(line); m != nil {
			a.appendListItem(false, len(m[1])/2, m[2])
			i++
			continue
		}
		if m := orderedItemRe.FindStringSubmatch(line); m != nil {
			a.appendListItem(true, len(m[1])/2, m[2])
			i++
			continue
		}

		// blockquotes: consume the whole contiguous run
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			a.flushList()
			var quote [][]Span
			for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), ">") {
				quote = append(quote, a.Resolver.Resolve(quotePrefixRe.ReplaceAllString(lines[i], "")))
				i++
			}
			a.emit(Blockquote{Lines: quote})
			continue
		}

		// horizontal rules
		if horizontalRe.MatchString(strings.TrimSpace(line)) {
			a.flushList()
			a.emit(Rule{})
			i++
			continue
		}

		// blank lines end a pending list
		if strings.TrimSpace(line) == "" {
			a.flushList()
			i++
			continue
		}

		// default: paragraph
		a.flushList()
		a.emit(Paragraph{Spans: a.Resolver.Resolve(line)})
		i++
	}

	a.flushList()

	// unterminated code fence closes implicitly at end of input
	if inCode {
		a.emitFence(codeLang, strings.Join(codeLines, "\n"))
	}
	// unterminated math block degrades to literal text in its own delimiters
	if inMath && len(mathLines) > 0 {
		closing := "$$"
		if mathDelim == `\[` {
			closing = `\]`
		}
		a.emit(Paragraph{Spans: []Span{{Kind: SpanText, Text: mathDelim}}})
		for _, l := range mathLines {
			a.emit(Paragraph{Spans: a.Resolver.Resolve(l)})
		}
		a.emit(Paragraph{Spans: []Span{{Kind: SpanText, Text: closing}}})
	}

	return &Document{Blocks: a.blocks}
}

func (a *Assembler) emit(b Block) {
	a.blocks = append(a.blocks, b)
}

func (a *Assembler) emitMath(latex string) {
	if latex == "" {
		return
	}
	a.emit(MathBlock{Latex: latex})
}

// emitFence routes a closed fence body either to a diagram placeholder or a
// plain code block.
func (a *Assembler) emitFence(lang, body string) {
	if strings.EqualFold(lang, "mermaid") {
		title := ""
		if a.CaptionsEnable {
			title = ExtractMermaidTitle(body)
		}
		source := body
		if a.OptimizeLayout {
			source = OptimizeMermaidLayout(source)
		}
		a.emit(Diagram{Source: StripMermaidTitle(source), Title: title})
		return
	}
	a.emit(CodeBlock{Language: lang, Text: body})
}

func (a *Assembler) appendListItem(ordered bool, indent int, text string) {
	if !a.inList || a.ordered != ordered {
		a.flushList()
		a.inList = true
		a.ordered = ordered
	}
	a.listItems = append(a.listItems, ListItem{Indent: indent, Spans: a.Resolver.Resolve(text)})
}

func (a *Assembler) flushList() {
	if a.inList && len(a.listItems) > 0 {
		a.emit(List{Ordered: a.ordered, Items: a.listItems})
	}
	a.listItems = nil
	a.inList = false
}

// fenceLanguage extracts the first word of the fence info string.
func fenceLanguage(infoRaw string) string {
	fields := strings.Fields(strings.TrimSpace(infoRaw))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// hasTopHeading reports whether the transcript already opens with a level-1
// heading anywhere outside a code fence.
func hasTopHeading(lines []string) bool {
	inCode := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "# ") {
			return true
		}
	}
	return false
}
