package docx

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const codeFontHalfPoints = 20 // 10pt

// appendCodeBlock renders a fenced code block as a shaded paragraph of
// colored runs, with a small language label above when known.
func (b *Builder) appendCodeBlock(code, language string) {
	if language != "" {
		b.appendCodeLanguageLabel(language)
	}

	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	ind := pPr.CreateElement("w:ind")
	ind.CreateAttr("w:left", "284") // 0.5cm
	spacing := pPr.CreateElement("w:spacing")
	if language != "" {
		spacing.CreateAttr("w:before", "60")
	} else {
		spacing.CreateAttr("w:before", "120")
	}
	spacing.CreateAttr("w:after", "120")
	shd := pPr.CreateElement("w:shd")
	shd.CreateAttr("w:val", "clear")
	shd.CreateAttr("w:fill", "F7F7F7")

	for _, tok := range b.tokenize(code, language) {
		if tok.Value == "" {
			continue
		}
		color, bold := tokenAppearance(tok.Type)
		b.appendCodeRuns(p, tok.Value, color, bold)
	}
}

func (b *Builder) appendCodeLanguageLabel(language string) {
	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	ind := pPr.CreateElement("w:ind")
	ind.CreateAttr("w:left", "284")
	spacing := pPr.CreateElement("w:spacing")
	spacing.CreateAttr("w:before", "120")
	spacing.CreateAttr("w:after", "0")

	r := p.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", b.opts.FontCode)
	fonts.CreateAttr("w:hAnsi", b.opts.FontCode)
	rPr.CreateElement("w:b")
	rPr.CreateElement("w:sz").CreateAttr("w:val", "16")
	rPr.CreateElement("w:color").CreateAttr("w:val", "646464")
	appendTextElement(r, strings.ToUpper(language))
}

// tokenize runs the chroma lexer for the fence language, degrading to one
// plain token when the language is unknown or lexing fails.
func (b *Builder) tokenize(code, language string) []chroma.Token {
	plain := []chroma.Token{{Type: chroma.Text, Value: code}}
	if language == "" {
		return plain
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return plain
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		b.log.Debug("Code highlighting failed, falling back to plain text",
			zap.String("language", language), zap.Error(err))
		return plain
	}
	return iterator.Tokens()
}

// appendCodeRuns splits a token on newlines so line structure survives, and
// emits one colored run per fragment with a hard break between them.
func (b *Builder) appendCodeRuns(p *etree.Element, value, color string, bold bool) {
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i > 0 {
			p.CreateElement("w:r").CreateElement("w:br")
		}
		if part == "" {
			continue
		}
		r := p.CreateElement("w:r")
		rPr := r.CreateElement("w:rPr")
		fonts := rPr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", b.opts.FontCode)
		fonts.CreateAttr("w:hAnsi", b.opts.FontCode)
		fonts.CreateAttr("w:eastAsia", b.opts.FontCode)
		rPr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(codeFontHalfPoints))
		if color != "" {
			rPr.CreateElement("w:color").CreateAttr("w:val", color)
		}
		if bold {
			rPr.CreateElement("w:b")
		}
		appendTextElement(r, part)
	}
}

// tokenAppearance maps highlight token classes to the palette used for code
// blocks. Unmapped classes render black.
func tokenAppearance(t chroma.TokenType) (color string, bold bool) {
	switch {
	case t == chroma.NameFunction:
		return "", false
	case t == chroma.NameClass:
		return "265278", false
	case t == chroma.NameDecorator:
		return "AA3300", false
	case t == chroma.NameBuiltin || t == chroma.NameBuiltinPseudo:
		return "006E47", false
	case t == chroma.LiteralStringDoc:
		return "6D7885", false
	case t.InCategory(chroma.Keyword):
		return "005CC5", true
	case t.InSubCategory(chroma.LiteralString):
		return "C41A16", false
	case t.InCategory(chroma.Comment):
		return "6D7885", false
	case t.InSubCategory(chroma.LiteralNumber):
		return "1C00CF", false
	case t.InCategory(chroma.Operator):
		return "5A6378", false
	default:
		return "", false
	}
}
