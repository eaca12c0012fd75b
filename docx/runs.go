package docx

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"mdc/markdown"
)

// runProps are per-context run overrides layered on top of span styling.
type runProps struct {
	Color          string // 6 hex digits
	SizeHalfPoints int    // 0 keeps the style default
	Bold           bool
}

// appendSpans renders resolved spans into a paragraph element.
func (b *Builder) appendSpans(ctx context.Context, p *etree.Element, spans []markdown.Span, props runProps) {
	for _, s := range spans {
		switch s.Kind {
		case markdown.SpanText:
			b.appendTextRun(p, s.Text, s.Style, props)
		case markdown.SpanCode:
			b.appendInlineCode(p, s.Text, props)
		case markdown.SpanLink:
			b.appendHyperlink(p, s.Text, s.URL, props)
		case markdown.SpanCrossRef:
			b.appendInternalHyperlink(p, s.Text, s.Anchor)
		case markdown.SpanMath:
			b.appendInlineEquation(p, s.Text, s.Style, props)
		case markdown.SpanImage:
			b.appendInlineImage(ctx, p, s.Alt, s.URL)
		default:
			b.log.Warn("Unknown span kind skipped", zap.Int("kind", int(s.Kind)))
		}
	}
}

func (b *Builder) appendTextRun(p *etree.Element, text string, style markdown.Style, props runProps) {
	if text == "" {
		return
	}
	r := p.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	if style.Bold || props.Bold {
		rPr.CreateElement("w:b")
	}
	if style.Italic {
		rPr.CreateElement("w:i")
	}
	if style.Strike {
		rPr.CreateElement("w:strike")
	}
	if props.Color != "" {
		rPr.CreateElement("w:color").CreateAttr("w:val", props.Color)
	}
	if props.SizeHalfPoints > 0 {
		rPr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(props.SizeHalfPoints))
	}
	if len(rPr.Child) == 0 {
		r.RemoveChild(rPr)
	}
	appendTextElement(r, text)
}

// codeURLRe spots bare links inside code spans. Same shape the inline
// resolver uses for autolinks, not anchored.
var codeURLRe = regexp.MustCompile(`(?:https?://|www\.)[^\s<>()]+`)

// appendInlineCode renders a code span in the code font with light shading,
// never re-styled by surrounding emphasis. URLs inside the span become
// code-styled hyperlinks, trailing sentence punctuation stays plain code.
func (b *Builder) appendInlineCode(p *etree.Element, text string, props runProps) {
	i := 0
	for _, loc := range codeURLRe.FindAllStringIndex(text, -1) {
		if loc[0] > i {
			b.appendCodeRun(p, text[i:loc[0]], props)
		}
		raw := text[loc[0]:loc[1]]
		trimmed := strings.TrimRight(raw, ".,;:!?)]}")
		if target := markdown.NormalizeURL(trimmed); target != "" {
			b.appendCodeHyperlink(p, trimmed, target, props)
			if suffix := raw[len(trimmed):]; suffix != "" {
				b.appendCodeRun(p, suffix, props)
			}
		} else {
			b.appendCodeRun(p, raw, props)
		}
		i = loc[1]
	}
	if i < len(text) {
		b.appendCodeRun(p, text[i:], props)
	}
}

func (b *Builder) appendCodeRun(p *etree.Element, text string, props runProps) {
	if text == "" {
		return
	}
	r := p.CreateElement("w:r")
	b.codeRunProps(r, props)
	appendTextElement(r, text)
}

func (b *Builder) appendCodeHyperlink(p *etree.Element, display, url string, props runProps) {
	rid := b.addRelationship(relTypeLink, url, true)
	link := p.CreateElement("w:hyperlink")
	link.CreateAttr("r:id", rid)
	r := link.CreateElement("w:r")
	b.codeRunProps(r, props)
	appendTextElement(r, display)
}

func (b *Builder) codeRunProps(r *etree.Element, props runProps) {
	rPr := r.CreateElement("w:rPr")
	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", b.opts.FontCode)
	fonts.CreateAttr("w:hAnsi", b.opts.FontCode)
	fonts.CreateAttr("w:eastAsia", b.opts.FontCode)
	size := props.SizeHalfPoints
	if size == 0 {
		size = 20
	}
	rPr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(size))
	shd := rPr.CreateElement("w:shd")
	shd.CreateAttr("w:val", "clear")
	shd.CreateAttr("w:fill", "F0F0F0")
}

func (b *Builder) appendHyperlink(p *etree.Element, display, url string, props runProps) {
	target := markdown.NormalizeURL(url)
	if target == "" {
		b.appendTextRun(p, display, markdown.Style{}, props)
		return
	}
	rid := b.addRelationship(relTypeLink, target, true)
	link := p.CreateElement("w:hyperlink")
	link.CreateAttr("r:id", rid)
	r := link.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	rPr.CreateElement("w:rStyle").CreateAttr("w:val", "Hyperlink")
	if props.SizeHalfPoints > 0 {
		rPr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(props.SizeHalfPoints))
	}
	appendTextElement(r, display)
}

func (b *Builder) appendInternalHyperlink(p *etree.Element, display, anchor string) {
	link := p.CreateElement("w:hyperlink")
	link.CreateAttr("w:anchor", anchor)
	r := link.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	rPr.CreateElement("w:rStyle").CreateAttr("w:val", "Hyperlink")
	appendTextElement(r, display)
}

// appendReferencesSection emits the numbered reference list with one
// bookmarked entry per unique citation source.
func (b *Builder) appendReferencesSection() {
	title := b.opts.ReferencesTitle
	if title == "" {
		title = "References"
	}
	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	pPr.CreateElement("w:pStyle").CreateAttr("w:val", "Heading2")
	b.appendTextRun(p, title, markdown.Style{}, runProps{})

	// fresh numbering instance so the list starts at 1
	b.orderedLists++
	numID := 1 + b.orderedLists

	for _, ref := range b.references {
		p := b.newParagraph()
		pPr := p.CreateElement("w:pPr")
		pPr.CreateElement("w:pStyle").CreateAttr("w:val", "ListNumber")
		numPr := pPr.CreateElement("w:numPr")
		numPr.CreateElement("w:ilvl").CreateAttr("w:val", "0")
		numPr.CreateElement("w:numId").CreateAttr("w:val", strconv.Itoa(numID))

		id := strconv.Itoa(b.nextBookmarkID())
		start := p.CreateElement("w:bookmarkStart")
		start.CreateAttr("w:id", id)
		start.CreateAttr("w:name", ref.Anchor)
		if ref.URL != "" {
			b.appendHyperlink(p, ref.Title, ref.URL, runProps{})
		} else {
			b.appendTextRun(p, ref.Title, markdown.Style{}, runProps{})
		}
		end := p.CreateElement("w:bookmarkEnd")
		end.CreateAttr("w:id", id)
	}
}

// appendTextElement adds a w:t preserving significant whitespace.
func appendTextElement(r *etree.Element, text string) {
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
}
