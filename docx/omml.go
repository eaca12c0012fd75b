package docx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"mdc/markdown"
)

// latexSymbols maps common LaTeX commands to their unicode forms. Anything
// outside this table renders as the literal command text.
var latexSymbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ",
	"phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
	"times": "×", "div": "÷", "pm": "±", "mp": "∓", "cdot": "⋅",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "propto": "∝",
	"infty": "∞", "partial": "∂", "nabla": "∇",
	"in": "∈", "notin": "∉", "subset": "⊂", "supset": "⊃", "subseteq": "⊆", "supseteq": "⊇",
	"cup": "∪", "cap": "∩", "emptyset": "∅", "setminus": "∖",
	"forall": "∀", "exists": "∃", "neg": "¬", "land": "∧", "lor": "∨",
	"rightarrow": "→", "to": "→", "leftarrow": "←", "Rightarrow": "⇒", "Leftarrow": "⇐",
	"leftrightarrow": "↔", "Leftrightarrow": "⇔", "mapsto": "↦",
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"sqrt": "√", "angle": "∠", "perp": "⊥", "parallel": "∥",
	"ldots": "…", "cdots": "⋯", "dots": "…", "prime": "′", "circ": "∘",
	"langle": "⟨", "rangle": "⟩", "hbar": "ℏ", "ell": "ℓ",
	"Re": "ℜ", "Im": "ℑ", "aleph": "ℵ", "degree": "°",
}

// passthroughCommands are structural commands dropped during conversion.
var passthroughCommands = map[string]bool{
	"left": true, "right": true, "displaystyle": true, "limits": true,
	"nolimits": true, "mathrm": false, "mathbf": false, "mathit": false,
	"text": false, "textrm": false, "operatorname": false,
}

// appendDisplayEquation renders display math as a centered OMML paragraph.
// Conversion failure degrades to a latex code block, never aborts.
func (b *Builder) appendDisplayEquation(latex string) {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return
	}
	if !b.opts.MathEnable {
		b.appendCodeBlock(latex, "latex")
		return
	}
	oMath, err := convertLatex(latex)
	if err != nil {
		b.log.Warn("Math conversion failed, falling back to code block", zap.Error(err))
		b.appendCodeBlock(latex, "latex")
		return
	}
	p := b.newParagraph()
	pPr := p.CreateElement("w:pPr")
	pPr.CreateElement("w:jc").CreateAttr("w:val", "center")
	oMathPara := p.CreateElement("m:oMathPara")
	oMathPara.AddChild(oMath)
}

// appendInlineEquation renders inline math inside the flowing paragraph.
// With math disabled, and on conversion failure, the latex stays literal
// wrapped in its original delimiters.
func (b *Builder) appendInlineEquation(p *etree.Element, latex string, style markdown.Style, props runProps) {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return
	}
	if !b.opts.MathEnable {
		b.appendTextRun(p, `\(`+latex+`\)`, style, props)
		return
	}
	oMath, err := convertLatex(latex)
	if err != nil {
		b.log.Debug("Inline math conversion failed, keeping literal text", zap.Error(err))
		b.appendTextRun(p, `\(`+latex+`\)`, style, props)
		return
	}
	p.AddChild(oMath)
}

// convertLatex translates a LaTeX subset (fractions, scripts, roots, greek
// and operator symbols) into an m:oMath element.
func convertLatex(latex string) (*etree.Element, error) {
	par := &latexParser{src: latex}
	oMath := etree.NewElement("m:oMath")
	if err := par.convertUntil(oMath, 0); err != nil {
		return nil, err
	}
	if par.pos < len(par.src) {
		return nil, fmt.Errorf("unbalanced group at offset %d", par.pos)
	}
	return oMath, nil
}

type latexParser struct {
	src string
	pos int
}

// convertUntil emits math children until end of input or an unconsumed
// closing brace at the given depth.
func (p *latexParser) convertUntil(parent *etree.Element, depth int) error {
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == '}':
			if depth == 0 {
				return nil
			}
			return nil
		case ch == '{':
			p.pos++
			grp := etree.NewElement("m:oMath") // scratch holder
			if err := p.convertUntil(grp, depth+1); err != nil {
				return err
			}
			if err := p.expect('}'); err != nil {
				return err
			}
			moveChildren(grp, parent)
		case ch == '\\':
			if err := p.convertCommand(parent, depth); err != nil {
				return err
			}
		case ch == '^' || ch == '_':
			if err := p.convertScript(parent, ch); err != nil {
				return err
			}
		default:
			start := p.pos
			for p.pos < len(p.src) && !strings.ContainsRune(`{}\^_`, rune(p.src[p.pos])) {
				p.pos++
			}
			appendMathRun(parent, p.src[start:p.pos])
		}
	}
	if depth > 0 {
		return errors.New("unterminated group")
	}
	return nil
}

func (p *latexParser) convertCommand(parent *etree.Element, depth int) error {
	p.pos++ // consume backslash
	if p.pos >= len(p.src) {
		appendMathRun(parent, `\`)
		return nil
	}
	// single-character escapes like \{ \} \\
	if !isLatexLetter(p.src[p.pos]) {
		appendMathRun(parent, string(p.src[p.pos]))
		p.pos++
		return nil
	}
	start := p.pos
	for p.pos < len(p.src) && isLatexLetter(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	p.skipSpaces()

	switch name {
	case "frac", "dfrac", "tfrac":
		num, err := p.parseGroup(depth)
		if err != nil {
			return err
		}
		den, err := p.parseGroup(depth)
		if err != nil {
			return err
		}
		f := parent.CreateElement("m:f")
		numEl := f.CreateElement("m:num")
		moveChildren(num, numEl)
		denEl := f.CreateElement("m:den")
		moveChildren(den, denEl)
		return nil
	case "sqrt":
		arg, err := p.parseGroup(depth)
		if err != nil {
			return err
		}
		rad := parent.CreateElement("m:rad")
		radPr := rad.CreateElement("m:radPr")
		radPr.CreateElement("m:degHide").CreateAttr("m:val", "1")
		rad.CreateElement("m:deg")
		e := rad.CreateElement("m:e")
		moveChildren(arg, e)
		return nil
	}

	if sym, ok := latexSymbols[name]; ok {
		appendMathRun(parent, sym)
		return nil
	}
	if keepArg, ok := passthroughCommands[name]; ok {
		if !keepArg && p.pos < len(p.src) && p.src[p.pos] == '{' {
			arg, err := p.parseGroup(depth)
			if err != nil {
				return err
			}
			moveChildren(arg, parent)
		}
		return nil
	}
	// function names like \sin, \log render as upright text
	appendMathRun(parent, name)
	return nil
}

// convertScript wraps the previous element in m:sSup or m:sSub.
func (p *latexParser) convertScript(parent *etree.Element, op byte) error {
	p.pos++ // consume ^ or _
	arg, err := p.parseScriptArg()
	if err != nil {
		return err
	}
	base := detachLastChild(parent)

	tag, argTag := "m:sSup", "m:sup"
	if op == '_' {
		tag, argTag = "m:sSub", "m:sub"
	}
	s := parent.CreateElement(tag)
	e := s.CreateElement("m:e")
	if base != nil {
		e.AddChild(base)
	}
	a := s.CreateElement(argTag)
	moveChildren(arg, a)
	return nil
}

// parseScriptArg parses either a braced group or a single token.
func (p *latexParser) parseScriptArg() (*etree.Element, error) {
	p.skipSpaces()
	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		return p.parseGroup(0)
	}
	holder := etree.NewElement("m:oMath")
	if p.pos >= len(p.src) {
		return nil, errors.New("missing script argument")
	}
	if p.src[p.pos] == '\\' {
		if err := p.convertCommand(holder, 0); err != nil {
			return nil, err
		}
		return holder, nil
	}
	appendMathRun(holder, string(p.src[p.pos]))
	p.pos++
	return holder, nil
}

func (p *latexParser) parseGroup(depth int) (*etree.Element, error) {
	p.skipSpaces()
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	holder := etree.NewElement("m:oMath")
	if err := p.convertUntil(holder, depth+1); err != nil {
		return nil, err
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return holder, nil
}

func (p *latexParser) expect(ch byte) error {
	if p.pos >= len(p.src) || p.src[p.pos] != ch {
		return fmt.Errorf("expected %q at offset %d", string(ch), p.pos)
	}
	p.pos++
	return nil
}

func (p *latexParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func appendMathRun(parent *etree.Element, text string) {
	if text == "" {
		return
	}
	r := parent.CreateElement("m:r")
	t := r.CreateElement("m:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
}

func moveChildren(from, to *etree.Element) {
	for _, child := range from.ChildElements() {
		from.RemoveChild(child)
		to.AddChild(child)
	}
}

func detachLastChild(parent *etree.Element) *etree.Element {
	children := parent.ChildElements()
	if len(children) == 0 {
		return nil
	}
	last := children[len(children)-1]
	// split a trailing text run so only its last glyph becomes the base
	if last.Tag == "r" {
		if t := last.FindElement("m:t"); t != nil {
			runes := []rune(t.Text())
			if len(runes) > 1 {
				t.SetText(string(runes[:len(runes)-1]))
				holder := etree.NewElement("m:oMath")
				appendMathRun(holder, string(runes[len(runes)-1]))
				return holder.ChildElements()[0]
			}
		}
	}
	parent.RemoveChild(last)
	return last
}

func isLatexLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
