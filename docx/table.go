package docx

import (
	"context"
	"strconv"

	"github.com/beevik/etree"

	"mdc/markdown"
)

const tableCellFontHalfPoints = 18 // 9pt in table cells

// appendTable renders a laid-out table with fixed column widths, header
// shading and repeat, and zebra striping on even body rows.
func (b *Builder) appendTable(ctx context.Context, t markdown.Table) {
	tbl := b.body.CreateElement("w:tbl")

	tblPr := tbl.CreateElement("w:tblPr")
	tblPr.CreateElement("w:tblStyle").CreateAttr("w:val", "TableGrid")
	tblW := tblPr.CreateElement("w:tblW")
	tblW.CreateAttr("w:w", strconv.Itoa(ContentWidthTwips))
	tblW.CreateAttr("w:type", "dxa")
	tblPr.CreateElement("w:jc").CreateAttr("w:val", "left")
	tblPr.CreateElement("w:tblLayout").CreateAttr("w:type", "fixed")

	// compact cell padding, twips
	cellMar := tblPr.CreateElement("w:tblCellMar")
	for _, side := range []struct {
		tag string
		w   int
	}{{"top", 60}, {"bottom", 60}, {"left", 90}, {"right", 90}} {
		el := cellMar.CreateElement("w:" + side.tag)
		el.CreateAttr("w:w", strconv.Itoa(side.w))
		el.CreateAttr("w:type", "dxa")
	}

	grid := tbl.CreateElement("w:tblGrid")
	for _, w := range t.Widths {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(w))
	}

	// header row repeats on page breaks
	hr := tbl.CreateElement("w:tr")
	trPr := hr.CreateElement("w:trPr")
	trPr.CreateElement("w:tblHeader").CreateAttr("w:val", "true")
	for ci, cell := range t.Header {
		b.appendTableCell(ctx, hr, cell, t.Aligns[ci], t.Widths[ci], b.opts.TableHeaderColor, true)
	}

	for ri, row := range t.Body {
		tr := tbl.CreateElement("w:tr")
		fill := ""
		if (ri+1)%2 == 0 {
			fill = b.opts.TableZebraColor
		}
		for ci, cell := range row {
			b.appendTableCell(ctx, tr, cell, t.Aligns[ci], t.Widths[ci], fill, false)
		}
	}
}

func (b *Builder) appendTableCell(ctx context.Context, tr *etree.Element, cell markdown.Cell, align markdown.Alignment, width int, fill string, header bool) {
	tc := tr.CreateElement("w:tc")
	tcPr := tc.CreateElement("w:tcPr")
	tcW := tcPr.CreateElement("w:tcW")
	tcW.CreateAttr("w:w", strconv.Itoa(width))
	tcW.CreateAttr("w:type", "dxa")
	if fill != "" {
		shd := tcPr.CreateElement("w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:fill", fill)
	}

	props := runProps{SizeHalfPoints: tableCellFontHalfPoints, Bold: header}
	for _, spans := range cell.Paragraphs {
		p := tc.CreateElement("w:p")
		pPr := p.CreateElement("w:pPr")
		if jc := alignmentValue(align); jc != "" {
			pPr.CreateElement("w:jc").CreateAttr("w:val", jc)
		}
		spacing := pPr.CreateElement("w:spacing")
		spacing.CreateAttr("w:before", "0")
		spacing.CreateAttr("w:after", "0")
		spacing.CreateAttr("w:line", "240")
		spacing.CreateAttr("w:lineRule", "auto")
		b.appendSpans(ctx, p, spans, props)
	}
	if len(cell.Paragraphs) == 0 {
		tc.CreateElement("w:p")
	}
}

func alignmentValue(a markdown.Alignment) string {
	switch a {
	case markdown.AlignCenter:
		return "center"
	case markdown.AlignRight:
		return "right"
	default:
		return ""
	}
}
