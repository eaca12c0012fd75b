package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

var bulletGlyphs = [3]string{"•", "◦", "▪"} // bullet, white bullet, small square

// numberingXML builds word/numbering.xml. Abstract definition 0 is the shared
// bullet list, definition 1 the decimal list. Bullets all map to instance 1;
// every ordered list got its own instance so numbering restarts per list.
func (b *Builder) numberingXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:numbering")
	root.CreateAttr("xmlns:w", nsW)

	b.appendBulletAbstract(root)
	b.appendDecimalAbstract(root)

	addInstance(root, 1, 0)
	for i := 0; i < b.orderedLists; i++ {
		addInstance(root, 2+i, 1)
	}
	return doc
}

func (b *Builder) appendBulletAbstract(root *etree.Element) {
	abstract := root.CreateElement("w:abstractNum")
	abstract.CreateAttr("w:abstractNumId", "0")
	for ilvl := 0; ilvl <= 8; ilvl++ {
		lvl := appendLevel(abstract, ilvl)
		lvl.CreateElement("w:numFmt").CreateAttr("w:val", "bullet")
		lvl.CreateElement("w:lvlText").CreateAttr("w:val", bulletGlyphs[ilvl%3])
		rPr := lvl.CreateElement("w:rPr")
		fonts := rPr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", "Symbol")
		fonts.CreateAttr("w:hAnsi", "Symbol")
	}
}

func (b *Builder) appendDecimalAbstract(root *etree.Element) {
	abstract := root.CreateElement("w:abstractNum")
	abstract.CreateAttr("w:abstractNumId", "1")
	for ilvl := 0; ilvl <= 8; ilvl++ {
		lvl := appendLevel(abstract, ilvl)
		lvl.CreateElement("w:start").CreateAttr("w:val", "1")
		lvl.CreateElement("w:numFmt").CreateAttr("w:val", "decimal")
		lvl.CreateElement("w:lvlText").CreateAttr("w:val", "%"+strconv.Itoa(ilvl+1)+".")
	}
}

func appendLevel(abstract *etree.Element, ilvl int) *etree.Element {
	lvl := abstract.CreateElement("w:lvl")
	lvl.CreateAttr("w:ilvl", strconv.Itoa(ilvl))
	lvl.CreateElement("w:lvlJc").CreateAttr("w:val", "left")
	pPr := lvl.CreateElement("w:pPr")
	ind := pPr.CreateElement("w:ind")
	ind.CreateAttr("w:left", strconv.Itoa(720*(ilvl+1)))
	ind.CreateAttr("w:hanging", "360")
	return lvl
}

func addInstance(root *etree.Element, numID, abstractID int) {
	num := root.CreateElement("w:num")
	num.CreateAttr("w:numId", strconv.Itoa(numID))
	num.CreateElement("w:abstractNumId").CreateAttr("w:val", strconv.Itoa(abstractID))
}
