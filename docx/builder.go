// Package docx assembles and serializes the output document package. The
// container is plain OPC: a zip archive of XML parts built with etree plus
// binary media, no external document library involved.
package docx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"mdc/markdown"
	"mdc/refs"
)

// Office Open XML namespaces used throughout the package.
const (
	nsW    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP   = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic  = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsM    = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	nsASVG = "http://schemas.microsoft.com/office/drawing/2016/SVG/main"

	relTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeLink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Options carries everything the builder needs to render one document.
// Caption prefix and references title arrive already localized.
type Options struct {
	FontLatin string
	FontAsian string
	FontCode  string

	TableHeaderColor string // 6 hex digits, no hash
	TableZebraColor  string

	MathEnable      bool
	CaptionsEnable  bool
	CaptionStyle    string // empty disables caption styling
	CaptionPrefix   string
	ReferencesTitle string

	Images ImageResolver // nil disables embedding, every image degrades to a placeholder
}

type relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type mediaPart struct {
	Name        string // under word/media/
	ContentType string
	Data        []byte
}

// Builder renders one markdown document into a DOCX part set. All mutable
// state lives here and a fresh builder is required per conversion.
type Builder struct {
	opts Options
	log  *zap.Logger

	doc  *etree.Document
	body *etree.Element

	references []refs.Reference

	rels  []relationship
	media []mediaPart

	bookmarkID         int
	drawingID          int
	figureCounter      int
	placeholderCounter int
	orderedLists       int
	captionStyleUsed   bool
}

// NewBuilder prepares an empty document with the standard part relationships
// in place.
func NewBuilder(opts Options, log *zap.Logger) *Builder {
	b := &Builder{
		opts:       opts,
		log:        log,
		bookmarkID: 1,
	}
	b.addRelationship(relTypeStyles, "styles.xml", false)
	b.addRelationship(relTypeNumbering, "numbering.xml", false)

	b.doc = etree.NewDocument()
	b.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := b.doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)
	root.CreateAttr("xmlns:m", nsM)
	root.CreateAttr("xmlns:asvg", nsASVG)
	b.body = root.CreateElement("w:body")
	return b
}

// Build renders the block sequence and the references section, then closes
// the body with page geometry. ctx reaches the image resolver only.
func (b *Builder) Build(ctx context.Context, md *markdown.Document, references []refs.Reference) error {
	b.references = references

	for _, block := range md.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.appendBlock(ctx, block)
	}

	if len(references) > 0 {
		b.appendReferencesSection()
	}

	b.appendSectionProperties()
	return nil
}

func (b *Builder) appendBlock(ctx context.Context, block markdown.Block) {
	switch bl := block.(type) {
	case markdown.Heading:
		b.appendHeading(ctx, bl)
	case markdown.Paragraph:
		p := b.newParagraph()
		b.appendSpans(ctx, p, bl.Spans, runProps{})
	case markdown.List:
		b.appendList(ctx, bl)
	case markdown.Table:
		b.appendTable(ctx, bl)
	case markdown.CodeBlock:
		b.appendCodeBlock(bl.Text, bl.Language)
	case markdown.MathBlock:
		b.appendDisplayEquation(bl.Latex)
	case markdown.Diagram:
		b.appendDiagramPlaceholder(ctx, bl)
	case markdown.Blockquote:
		b.appendBlockquote(ctx, bl)
	case markdown.Rule:
		b.appendHorizontalRule()
	default:
		b.log.Warn("Unknown block type skipped", zap.Any("block", block))
	}
}

func (b *Builder) appendHeading(ctx context.Context, h markdown.Heading) {
	level := h.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	pStyle := pPr.CreateElement("w:pStyle")
	pStyle.CreateAttr("w:val", "Heading"+strconv.Itoa(level))
	b.appendSpans(ctx, p, h.Spans, runProps{})
}

func (b *Builder) appendList(ctx context.Context, l markdown.List) {
	numID := 1 // all bullet lists share one instance
	if l.Ordered {
		// a fresh instance per list restarts the numbering
		b.orderedLists++
		numID = 1 + b.orderedLists
	}
	for _, item := range l.Items {
		indent := item.Indent
		if indent > 8 {
			indent = 8
		}
		p := b.newParagraph()
		pPr := p.CreateElement("w:pPr")
		style := pPr.CreateElement("w:pStyle")
		if l.Ordered {
			style.CreateAttr("w:val", "ListNumber")
		} else {
			style.CreateAttr("w:val", "ListBullet")
		}
		numPr := pPr.CreateElement("w:numPr")
		numPr.CreateElement("w:ilvl").CreateAttr("w:val", strconv.Itoa(indent))
		numPr.CreateElement("w:numId").CreateAttr("w:val", strconv.Itoa(numID))
		b.appendSpans(ctx, p, item.Spans, runProps{})
	}
}

func (b *Builder) appendBlockquote(ctx context.Context, q markdown.Blockquote) {
	for _, line := range q.Lines {
		p := b.newParagraph()
		pPr := p.CreateElement("w:pPr")
		pPr.CreateElement("w:pStyle").CreateAttr("w:val", "Quote")
		b.appendSpans(ctx, p, line, runProps{Color: "555555"})
	}
}

func (b *Builder) appendHorizontalRule() {
	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:before", "240")
	spacing.CreateAttr("w:after", "240")
	pBdr := pPr.CreateElement("w:pBdr")
	bottom := pBdr.CreateElement("w:bottom")
	bottom.CreateAttr("w:val", "single")
	bottom.CreateAttr("w:sz", "6")
	bottom.CreateAttr("w:space", "1")
	bottom.CreateAttr("w:color", "auto")
}

func (b *Builder) appendSectionProperties() {
	sectPr := b.body.CreateElement("w:sectPr")
	pgSz := sectPr.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", strconv.Itoa(PageWidthTwips))
	pgSz.CreateAttr("w:h", strconv.Itoa(PageHeightTwips))
	pgMar := sectPr.CreateElement("w:pgMar")
	for _, side := range []string{"top", "right", "bottom", "left"} {
		pgMar.CreateAttr("w:"+side, strconv.Itoa(PageMarginTwips))
	}
	pgMar.CreateAttr("w:header", "720")
	pgMar.CreateAttr("w:footer", "720")
	pgMar.CreateAttr("w:gutter", "0")
}

func (b *Builder) newParagraph() *etree.Element {
	return b.body.CreateElement("w:p")
}

// addRelationship registers a part relationship and returns its id.
func (b *Builder) addRelationship(relType, target string, external bool) string {
	id := "rId" + strconv.Itoa(len(b.rels)+1)
	b.rels = append(b.rels, relationship{ID: id, Type: relType, Target: target, External: external})
	return id
}

// addMedia stores a binary part under word/media and returns its image
// relationship id.
func (b *Builder) addMedia(ext, contentType string, data []byte) (string, string) {
	name := fmt.Sprintf("image%d.%s", len(b.media)+1, ext)
	b.media = append(b.media, mediaPart{Name: name, ContentType: contentType, Data: data})
	rid := b.addRelationship(relTypeImage, "media/"+name, false)
	return rid, name
}

func (b *Builder) nextBookmarkID() int {
	id := b.bookmarkID
	b.bookmarkID++
	return id
}

func (b *Builder) nextDrawingID() int {
	b.drawingID++
	return b.drawingID
}
