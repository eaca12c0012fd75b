// Package markdown implements a single-pass, line-oriented parser for the
// Markdown flavor used in chat transcripts. It produces a flat tree of typed
// blocks with inline spans already resolved, leaving all output concerns to
// the docx package.
package markdown

// SpanKind discriminates inline span variants.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanCode
	SpanLink
	SpanCrossRef
	SpanMath
	SpanImage
)

// Style carries emphasis flags inherited through recursive resolution.
type Style struct {
	Bold   bool
	Italic bool
	Strike bool
}

// Span is a styled run of inline content. Which fields are meaningful
// depends on Kind:
//
//	SpanText     - Text, Style
//	SpanCode     - Text (verbatim, never re-scanned)
//	SpanLink     - Text (display), URL
//	SpanCrossRef - Text (display), Anchor
//	SpanMath     - Text (latex), Style
//	SpanImage    - Alt, URL
type Span struct {
	Kind   SpanKind
	Text   string
	URL    string
	Anchor string
	Alt    string
	Style  Style
}

// Block is a structural unit of the document.
type Block interface {
	block()
}

type Heading struct {
	Level int
	Spans []Span
}

type Paragraph struct {
	Spans []Span
}

// ListItem keeps the flat indent level computed from leading whitespace.
type ListItem struct {
	Indent int
	Spans  []Span
}

type List struct {
	Ordered bool
	Items   []ListItem
}

// Alignment of a table column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Cell content is a sequence of independently resolved sub-paragraphs,
// split on literal newlines or <br> markers.
type Cell struct {
	Paragraphs [][]Span
}

type Table struct {
	Header []Cell
	Body   [][]Cell
	Aligns []Alignment
	Widths []int // resolved column widths, sum equals available width
}

type CodeBlock struct {
	Language string
	Text     string
}

type MathBlock struct {
	Latex string
}

// Diagram is a mermaid fence lifted out of the code-block path. Source is
// already cleaned for rendering (title directives stripped, layout rewritten
// when requested); Title carries the extracted caption text if any.
type Diagram struct {
	Source string
	Title  string
}

type Blockquote struct {
	Lines [][]Span
}

type Rule struct{}

func (Heading) block()    {}
func (Paragraph) block()  {}
func (List) block()       {}
func (Table) block()      {}
func (CodeBlock) block()  {}
func (MathBlock) block()  {}
func (Diagram) block()    {}
func (Blockquote) block() {}
func (Rule) block()       {}

// Document is the result of one assembly run, owned by a single conversion.
type Document struct {
	Blocks []Block
}
