package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// heading sizes in half-points, levels 1 through 6.
var headingSizes = [6]int{32, 28, 26, 24, 22, 22}

// stylesXML builds word/styles.xml. Only styles the builder can actually
// reference are emitted.
func (b *Builder) stylesXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", nsW)

	b.appendDocDefaults(root)
	b.appendNormalStyle(root)
	for level := 1; level <= 6; level++ {
		b.appendHeadingStyle(root, level)
	}
	b.appendListStyle(root, "ListBullet", "List Bullet")
	b.appendListStyle(root, "ListNumber", "List Number")
	b.appendQuoteStyle(root)
	b.appendHyperlinkStyle(root)
	b.appendTableGridStyle(root)
	if b.captionStyleUsed {
		b.appendCaptionStyle(root)
	}
	return doc
}

func (b *Builder) appendDocDefaults(root *etree.Element) {
	defaults := root.CreateElement("w:docDefaults")
	rDefault := defaults.CreateElement("w:rPrDefault")
	rPr := rDefault.CreateElement("w:rPr")
	b.appendBodyFonts(rPr)
	rPr.CreateElement("w:sz").CreateAttr("w:val", "22")
	rPr.CreateElement("w:szCs").CreateAttr("w:val", "22")
	defaults.CreateElement("w:pPrDefault").CreateElement("w:pPr")
}

func (b *Builder) appendNormalStyle(root *etree.Element) {
	style := newStyle(root, "paragraph", "Normal", "Normal")
	style.CreateAttr("w:default", "1")
	pPr := style.CreateElement("w:pPr")
	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:after", "120")
	spacing.CreateAttr("w:line", "360")
	spacing.CreateAttr("w:lineRule", "auto")
	rPr := style.CreateElement("w:rPr")
	b.appendBodyFonts(rPr)
	rPr.CreateElement("w:sz").CreateAttr("w:val", "22")
}

func (b *Builder) appendHeadingStyle(root *etree.Element, level int) {
	id := "Heading" + strconv.Itoa(level)
	style := newStyle(root, "paragraph", id, "heading "+strconv.Itoa(level))
	style.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
	style.CreateElement("w:next").CreateAttr("w:val", "Normal")
	pPr := style.CreateElement("w:pPr")
	pPr.CreateElement("w:keepNext")
	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:before", "240")
	spacing.CreateAttr("w:after", "120")
	pPr.CreateElement("w:outlineLvl").CreateAttr("w:val", strconv.Itoa(level-1))
	rPr := style.CreateElement("w:rPr")
	b.appendBodyFonts(rPr)
	rPr.CreateElement("w:b")
	sz := strconv.Itoa(headingSizes[level-1])
	rPr.CreateElement("w:sz").CreateAttr("w:val", sz)
	rPr.CreateElement("w:szCs").CreateAttr("w:val", sz)
}

func (b *Builder) appendListStyle(root *etree.Element, id, name string) {
	style := newStyle(root, "paragraph", id, name)
	style.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
	pPr := style.CreateElement("w:pPr")
	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:after", "60")
}

func (b *Builder) appendQuoteStyle(root *etree.Element) {
	style := newStyle(root, "paragraph", "Quote", "Quote")
	style.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
	pPr := style.CreateElement("w:pPr")
	ind := pPr.CreateElement("w:ind")
	ind.CreateAttr("w:left", "567")
	pBdr := pPr.CreateElement("w:pBdr")
	left := pBdr.CreateElement("w:left")
	left.CreateAttr("w:val", "single")
	left.CreateAttr("w:sz", "12")
	left.CreateAttr("w:space", "4")
	left.CreateAttr("w:color", "CCCCCC")
	rPr := style.CreateElement("w:rPr")
	rPr.CreateElement("w:i")
	rPr.CreateElement("w:color").CreateAttr("w:val", "555555")
}

func (b *Builder) appendHyperlinkStyle(root *etree.Element) {
	style := newStyle(root, "character", "Hyperlink", "Hyperlink")
	rPr := style.CreateElement("w:rPr")
	rPr.CreateElement("w:color").CreateAttr("w:val", "0563C1")
	rPr.CreateElement("w:u").CreateAttr("w:val", "single")
}

func (b *Builder) appendTableGridStyle(root *etree.Element) {
	style := newStyle(root, "table", "TableGrid", "Table Grid")
	tblPr := style.CreateElement("w:tblPr")
	borders := tblPr.CreateElement("w:tblBorders")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		border := borders.CreateElement("w:" + side)
		border.CreateAttr("w:val", "single")
		border.CreateAttr("w:sz", "4")
		border.CreateAttr("w:space", "0")
		border.CreateAttr("w:color", "BFBFBF")
	}
}

func (b *Builder) appendCaptionStyle(root *etree.Element) {
	style := newStyle(root, "paragraph", styleID(b.opts.CaptionStyle), b.opts.CaptionStyle)
	style.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
	pPr := style.CreateElement("w:pPr")
	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:before", "40")
	spacing.CreateAttr("w:after", "160")
	rPr := style.CreateElement("w:rPr")
	rPr.CreateElement("w:color").CreateAttr("w:val", "505050")
	rPr.CreateElement("w:sz").CreateAttr("w:val", "18")
}

func (b *Builder) appendBodyFonts(rPr *etree.Element) {
	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", b.opts.FontLatin)
	fonts.CreateAttr("w:hAnsi", b.opts.FontLatin)
	fonts.CreateAttr("w:eastAsia", b.opts.FontAsian)
}

func newStyle(root *etree.Element, styleType, id, name string) *etree.Element {
	style := root.CreateElement("w:style")
	style.CreateAttr("w:type", styleType)
	style.CreateAttr("w:styleId", id)
	style.CreateElement("w:name").CreateAttr("w:val", name)
	return style
}
