package docx

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"mdc/markdown"
)

// mermaidDescrPrefix marks a placeholder drawing whose source awaits
// client-side rendering. The patch step looks for this annotation.
const mermaidDescrPrefix = "MERMAID_SRC:"

// svgBlipExtURI is the Microsoft extension uri carrying the SVG companion of
// a raster blip.
const svgBlipExtURI = "{96DAC541-7B7A-43D3-8B79-37D633B846F1}"

// transparentPNG is a 1x1 fully transparent PNG.
var transparentPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

var dummySVG = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1" viewBox="0 0 1 1"></svg>`)

// appendDiagramPlaceholder inserts a 1x1 transparent image annotated with the
// diagram source. Rendering happens later, outside the document pipeline, by
// replacing the media parts this drawing points at.
func (b *Builder) appendDiagramPlaceholder(_ context.Context, d markdown.Diagram) {
	b.placeholderCounter++

	// Word deduplicates identical media bytes into one part, so every
	// placeholder gets a unique tEXt chunk derived from its source.
	seed := fmt.Sprintf("%x", sha256.Sum256([]byte(strconv.Itoa(b.placeholderCounter)+"\n"+d.Source)))[:16]
	png := pngWithTextChunk(transparentPNG, "mdc", seed)

	ridPNG, _ := b.addMedia("png", "image/png", png)
	ridSVG, _ := b.addMedia("svg", "image/svg+xml", dummySVG)

	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	pPr.CreateElement("w:jc").CreateAttr("w:val", "center")
	b.appendDrawing(p, drawingSpec{
		RID:      ridPNG,
		SVGRID:   ridSVG,
		WidthEMU: EMUPerPixel,
		Height:   EMUPerPixel,
		Name:     fmt.Sprintf("Mermaid %d", b.placeholderCounter),
		Title:    "Mermaid Diagram Placeholder",
		Descr:    mermaidDescrPrefix + percentEncode(d.Source),
	})

	b.appendDiagramCaption(d.Title)
}

// appendDiagramCaption numbers the figure and writes a centered caption
// paragraph. A blank prefix with no title suppresses the caption entirely.
func (b *Builder) appendDiagramCaption(title string) {
	if !b.opts.CaptionsEnable {
		return
	}
	prefix := strings.TrimSpace(b.opts.CaptionPrefix)
	if prefix == "" && title == "" {
		return
	}
	b.figureCounter++
	caption := title
	if prefix != "" {
		caption = fmt.Sprintf("%s %d", prefix, b.figureCounter)
		if title != "" {
			caption += ": " + title
		}
	}
	if caption == "" {
		return
	}
	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	if style := strings.TrimSpace(b.opts.CaptionStyle); style != "" {
		pPr.CreateElement("w:pStyle").CreateAttr("w:val", styleID(style))
		b.captionStyleUsed = true
	}
	pPr.CreateElement("w:jc").CreateAttr("w:val", "center")
	b.appendTextRun(p, caption, markdown.Style{}, runProps{})
}

type drawingSpec struct {
	RID      string
	SVGRID   string // empty when there is no SVG companion
	WidthEMU int64
	Height   int64
	Name     string
	Title    string
	Descr    string
}

// appendDrawing emits an inline picture run.
func (b *Builder) appendDrawing(p *etree.Element, spec drawingSpec) {
	id := b.nextDrawingID()

	r := p.CreateElement("w:r")
	drawing := r.CreateElement("w:drawing")
	inline := drawing.CreateElement("wp:inline")
	for _, dist := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(dist, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", strconv.FormatInt(spec.WidthEMU, 10))
	extent.CreateAttr("cy", strconv.FormatInt(spec.Height, 10))
	effect := inline.CreateElement("wp:effectExtent")
	for _, side := range []string{"l", "t", "r", "b"} {
		effect.CreateAttr(side, "0")
	}
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", strconv.Itoa(id))
	docPr.CreateAttr("name", spec.Name)
	if spec.Title != "" {
		docPr.CreateAttr("title", spec.Title)
	}
	if spec.Descr != "" {
		docPr.CreateAttr("descr", spec.Descr)
	}
	framePr := inline.CreateElement("wp:cNvGraphicFramePr")
	framePr.CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	graphic := inline.CreateElement("a:graphic")
	graphicData := graphic.CreateElement("a:graphicData")
	graphicData.CreateAttr("uri", nsPic)
	pic := graphicData.CreateElement("pic:pic")

	nvPicPr := pic.CreateElement("pic:nvPicPr")
	cNvPr := nvPicPr.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(id))
	cNvPr.CreateAttr("name", spec.Name)
	nvPicPr.CreateElement("pic:cNvPicPr")

	blipFill := pic.CreateElement("pic:blipFill")
	blip := blipFill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", spec.RID)
	if spec.SVGRID != "" {
		extLst := blip.CreateElement("a:extLst")
		ext := extLst.CreateElement("a:ext")
		ext.CreateAttr("uri", svgBlipExtURI)
		ext.CreateElement("asvg:svgBlip").CreateAttr("r:embed", spec.SVGRID)
	}
	blipFill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", strconv.FormatInt(spec.WidthEMU, 10))
	ext.CreateAttr("cy", strconv.FormatInt(spec.Height, 10))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}

// pngWithTextChunk inserts a tEXt chunk before IEND. Anything that is not a
// well formed PNG comes back unchanged.
func pngWithTextChunk(png []byte, keyword, value string) []byte {
	sig := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if len(png) < len(sig) || string(png[:8]) != string(sig) {
		return png
	}
	if keyword == "" {
		keyword = "mdc"
	}
	if len(keyword) > 79 {
		keyword = keyword[:79]
	}
	data := append(append([]byte(keyword), 0), []byte(value)...)
	chunkType := []byte("tEXt")
	crc := crc32.ChecksumIEEE(append(chunkType, data...))

	var chunk []byte
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(data)))
	chunk = append(chunk, chunkType...)
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc)

	out := make([]byte, 0, len(png)+len(chunk))
	out = append(out, png[:8]...)
	offset := 8
	inserted := false
	for offset+8 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[offset : offset+4]))
		ctype := string(png[offset+4 : offset+8])
		total := 12 + length
		if offset+total > len(png) {
			break
		}
		if ctype == "IEND" && !inserted {
			out = append(out, chunk...)
			inserted = true
		}
		out = append(out, png[offset:offset+total]...)
		offset += total
		if ctype == "IEND" {
			break
		}
	}
	if !inserted {
		return png
	}
	return out
}

// percentEncode escapes everything outside the RFC 3986 unreserved set,
// keeping slashes readable.
func percentEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '-' || c == '.' || c == '_' || c == '~' || c == '/' {
			sb.WriteByte(c)
			continue
		}
		sb.WriteString(fmt.Sprintf("%%%02X", c))
	}
	return sb.String()
}

func percentDecode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if hi, ok1 := hexVal(s[i+1]); ok1 {
				if lo, ok2 := hexVal(s[i+2]); ok2 {
					sb.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// styleID collapses a display style name into its internal id form.
func styleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}
