package docx

import (
	"testing"

	"go.uber.org/zap"
)

func TestAppendInlineCode_Plain(t *testing.T) {
	b := NewBuilder(Options{FontCode: "Consolas"}, zap.NewNop())
	p := b.newParagraph()
	b.appendInlineCode(p, "fmt.Println(42)", runProps{})

	runs := p.FindElements("w:r")
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if got := r.FindElement("w:t").Text(); got != "fmt.Println(42)" {
		t.Errorf("run text = %q", got)
	}
	fonts := r.FindElement("w:rPr/w:rFonts")
	if fonts == nil || fonts.SelectAttrValue("w:ascii", "") != "Consolas" {
		t.Error("code run is not in the code font")
	}
	if r.FindElement("w:rPr/w:shd") == nil {
		t.Error("code run is not shaded")
	}
	if p.FindElement("w:hyperlink") != nil {
		t.Error("plain code must not produce a hyperlink")
	}
}

func TestAppendInlineCode_Autolink(t *testing.T) {
	b := NewBuilder(Options{FontCode: "Consolas"}, zap.NewNop())
	p := b.newParagraph()
	b.appendInlineCode(p, "see https://example.com/docs. for details", runProps{})

	link := p.FindElement("w:hyperlink")
	if link == nil {
		t.Fatal("expected a hyperlink inside the code span")
	}
	if link.SelectAttrValue("r:id", "") == "" {
		t.Error("hyperlink has no relationship id")
	}
	if got := link.FindElement("w:r/w:t").Text(); got != "https://example.com/docs" {
		t.Errorf("hyperlink display = %q, trailing punctuation must stay outside", got)
	}
	fonts := link.FindElement("w:r/w:rPr/w:rFonts")
	if fonts == nil || fonts.SelectAttrValue("w:ascii", "") != "Consolas" {
		t.Error("hyperlink run is not code styled")
	}
	if link.FindElement("w:r/w:rPr/w:shd") == nil {
		t.Error("hyperlink run is not shaded like code")
	}

	var texts []string
	for _, r := range p.FindElements("w:r") {
		texts = append(texts, r.FindElement("w:t").Text())
	}
	want := []string{"see ", ".", " for details"}
	if len(texts) != len(want) {
		t.Fatalf("plain code runs = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("code run %d = %q, want %q", i, texts[i], want[i])
		}
	}

	found := false
	for _, rel := range b.rels {
		if rel.External && rel.Target == "https://example.com/docs" {
			found = true
		}
	}
	if !found {
		t.Error("expected external relationship for the code link")
	}
}

func TestAppendInlineCode_BareWWW(t *testing.T) {
	b := NewBuilder(Options{FontCode: "Consolas"}, zap.NewNop())
	p := b.newParagraph()
	b.appendInlineCode(p, "www.example.com", runProps{})

	link := p.FindElement("w:hyperlink")
	if link == nil {
		t.Fatal("expected a hyperlink for the bare www link")
	}
	if got := link.FindElement("w:r/w:t").Text(); got != "www.example.com" {
		t.Errorf("hyperlink display = %q", got)
	}
	found := false
	for _, rel := range b.rels {
		if rel.External && rel.Target == "https://www.example.com" {
			found = true
		}
	}
	if !found {
		t.Error("expected scheme-normalized relationship target")
	}
}
