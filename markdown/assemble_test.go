package markdown

import (
	"strings"
	"testing"
)

func newTestAssembler() *Assembler {
	return &Assembler{
		Resolver:       &Resolver{MathEnable: true, InlineDollar: true},
		MathEnable:     true,
		CaptionsEnable: true,
		OptimizeLayout: true,
		AvailableWidth: testPageWidth,
		MinCellWidth:   testMinCell,
	}
}

func TestAssembleHeadingAndParagraph(t *testing.T) {
	doc := newTestAssembler().Assemble("# Title\n\nHello **world**.")
	if len(doc.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(doc.Blocks))
	}
	h, ok := doc.Blocks[0].(Heading)
	if !ok || h.Level != 1 {
		t.Fatalf("first block = %#v, want level-1 heading", doc.Blocks[0])
	}
	if got := plainText(h.Spans); got != "Title" {
		t.Errorf("heading text = %q", got)
	}
	p, ok := doc.Blocks[1].(Paragraph)
	if !ok {
		t.Fatalf("second block = %#v, want paragraph", doc.Blocks[1])
	}
	var plain, bold string
	for _, s := range p.Spans {
		if s.Style.Bold {
			bold += s.Text
		} else {
			plain += s.Text
		}
	}
	if bold != "world" || !strings.HasPrefix(plain, "Hello ") {
		t.Errorf("paragraph runs: plain %q bold %q", plain, bold)
	}
}

func TestAssembleTopHeading(t *testing.T) {
	t.Run("prepended when absent", func(t *testing.T) {
		a := newTestAssembler()
		a.TopHeading = "Chat Title"
		doc := a.Assemble("just text")
		h, ok := doc.Blocks[0].(Heading)
		if !ok || h.Level != 1 || plainText(h.Spans) != "Chat Title" {
			t.Errorf("first block = %#v, want prepended heading", doc.Blocks[0])
		}
	})
	t.Run("skipped when content has h1", func(t *testing.T) {
		a := newTestAssembler()
		a.TopHeading = "Chat Title"
		doc := a.Assemble("# Own Title\n\ntext")
		h, ok := doc.Blocks[0].(Heading)
		if !ok || plainText(h.Spans) != "Own Title" {
			t.Errorf("first block = %#v, want content heading only", doc.Blocks[0])
		}
		for _, b := range doc.Blocks[1:] {
			if hh, ok := b.(Heading); ok && plainText(hh.Spans) == "Chat Title" {
				t.Error("top heading must not be prepended when content has an h1")
			}
		}
	})
}

func TestAssembleMermaidRewrite(t *testing.T) {
	doc := newTestAssembler().Assemble("```mermaid\ngraph LR\nA-->B\n```")
	if len(doc.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(doc.Blocks))
	}
	d, ok := doc.Blocks[0].(Diagram)
	if !ok {
		t.Fatalf("block = %#v, want diagram", doc.Blocks[0])
	}
	if !strings.HasPrefix(d.Source, "graph TD") {
		t.Errorf("layout not rewritten: %q", d.Source)
	}
	if strings.Contains(d.Source, "LR") {
		t.Errorf("LR survived rewrite: %q", d.Source)
	}
	for _, b := range doc.Blocks {
		if _, ok := b.(CodeBlock); ok {
			t.Error("mermaid fence must not produce a literal code block")
		}
	}
}

func TestAssembleLists(t *testing.T) {
	t.Run("flush on type switch", func(t *testing.T) {
		doc := newTestAssembler().Assemble("- a\n- b\n1. c\n2. d")
		if len(doc.Blocks) != 2 {
			t.Fatalf("blocks = %d, want 2 lists", len(doc.Blocks))
		}
		l0 := doc.Blocks[0].(List)
		l1 := doc.Blocks[1].(List)
		if l0.Ordered || !l1.Ordered {
			t.Errorf("list kinds: %v %v", l0.Ordered, l1.Ordered)
		}
		if len(l0.Items) != 2 || len(l1.Items) != 2 {
			t.Errorf("item counts: %d %d", len(l0.Items), len(l1.Items))
		}
	})
	t.Run("indent levels", func(t *testing.T) {
		doc := newTestAssembler().Assemble("- a\n  - b\n    - c")
		l := doc.Blocks[0].(List)
		if l.Items[0].Indent != 0 || l.Items[1].Indent != 1 || l.Items[2].Indent != 2 {
			t.Errorf("indents = %d %d %d", l.Items[0].Indent, l.Items[1].Indent, l.Items[2].Indent)
		}
	})
	t.Run("flush at blank line", func(t *testing.T) {
		doc := newTestAssembler().Assemble("- a\n\ntext")
		if len(doc.Blocks) != 2 {
			t.Fatalf("blocks = %d, want list then paragraph", len(doc.Blocks))
		}
		if _, ok := doc.Blocks[0].(List); !ok {
			t.Errorf("first block = %#v", doc.Blocks[0])
		}
		if _, ok := doc.Blocks[1].(Paragraph); !ok {
			t.Errorf("second block = %#v", doc.Blocks[1])
		}
	})
	t.Run("flush at end of input", func(t *testing.T) {
		doc := newTestAssembler().Assemble("- a\n- b")
		if len(doc.Blocks) != 1 {
			t.Fatalf("blocks = %d, want 1", len(doc.Blocks))
		}
	})
}

func TestAssembleMath(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		doc := newTestAssembler().Assemble(`\[E=mc^2\]`)
		m, ok := doc.Blocks[0].(MathBlock)
		if !ok || m.Latex != "E=mc^2" {
			t.Errorf("block = %#v", doc.Blocks[0])
		}
	})
	t.Run("dollar fence", func(t *testing.T) {
		doc := newTestAssembler().Assemble("$$\nx^2\n$$")
		m, ok := doc.Blocks[0].(MathBlock)
		if !ok || m.Latex != "x^2" {
			t.Errorf("block = %#v", doc.Blocks[0])
		}
	})
	t.Run("unterminated fence degrades to literal text", func(t *testing.T) {
		doc := newTestAssembler().Assemble("\\[\nx+y\nnever closed")
		if len(doc.Blocks) != 4 {
			t.Fatalf("blocks = %d, want 4 literal paragraphs", len(doc.Blocks))
		}
		first := doc.Blocks[0].(Paragraph)
		last := doc.Blocks[3].(Paragraph)
		if plainText(first.Spans) != `\[` || plainText(last.Spans) != `\]` {
			t.Errorf("delimiters = %q %q", plainText(first.Spans), plainText(last.Spans))
		}
	})
	t.Run("disabled math passes through", func(t *testing.T) {
		a := newTestAssembler()
		a.MathEnable = false
		doc := a.Assemble("$$\nx^2\n$$")
		for _, b := range doc.Blocks {
			if _, ok := b.(MathBlock); ok {
				t.Error("math must not be parsed when disabled")
			}
		}
	})
}

func TestAssembleUnterminatedCodeFence(t *testing.T) {
	doc := newTestAssembler().Assemble("```go\nfunc main() {}\n")
	if len(doc.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(doc.Blocks))
	}
	cb, ok := doc.Blocks[0].(CodeBlock)
	if !ok || cb.Language != "go" {
		t.Fatalf("block = %#v", doc.Blocks[0])
	}
	if !strings.Contains(cb.Text, "func main() {}") {
		t.Errorf("code text = %q", cb.Text)
	}
}

func TestAssembleBlockquoteAndRule(t *testing.T) {
	doc := newTestAssembler().Assemble("> first\n> second\n\n---")
	bq, ok := doc.Blocks[0].(Blockquote)
	if !ok || len(bq.Lines) != 2 {
		t.Fatalf("block = %#v", doc.Blocks[0])
	}
	if plainText(bq.Lines[0]) != "first" || plainText(bq.Lines[1]) != "second" {
		t.Errorf("quote lines = %q %q", plainText(bq.Lines[0]), plainText(bq.Lines[1]))
	}
	if _, ok := doc.Blocks[1].(Rule); !ok {
		t.Errorf("second block = %#v, want rule", doc.Blocks[1])
	}
}

func TestAssembleTableRun(t *testing.T) {
	doc := newTestAssembler().Assemble("before\n| a | b |\n|---|---|\n| 1 | 2 |\nafter")
	if len(doc.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(doc.Blocks))
	}
	if _, ok := doc.Blocks[1].(Table); !ok {
		t.Errorf("middle block = %#v, want table", doc.Blocks[1])
	}
}

func TestAssembleCodeFenceShieldsMarkup(t *testing.T) {
	doc := newTestAssembler().Assemble("```\n# not a heading\n| not | a | table |\n```")
	if len(doc.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(doc.Blocks))
	}
	cb := doc.Blocks[0].(CodeBlock)
	if !strings.Contains(cb.Text, "# not a heading") {
		t.Errorf("code text = %q", cb.Text)
	}
}
