package docx

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"mdc/markdown"
	"mdc/refs"
)

func TestNumberingXML_Instances(t *testing.T) {
	b := NewBuilder(testOptions(), zap.NewNop())
	text := []markdown.Span{{Kind: markdown.SpanText, Text: "item"}}
	md := &markdown.Document{Blocks: []markdown.Block{
		markdown.List{Items: []markdown.ListItem{{Spans: text}}},
		markdown.List{Ordered: true, Items: []markdown.ListItem{{Spans: text}}},
		markdown.List{Ordered: true, Items: []markdown.ListItem{{Spans: text}}},
	}}
	references := []refs.Reference{{Index: 1, Title: "n/a", Anchor: "ref-1"}}
	if err := b.Build(context.Background(), md, references); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	doc := b.numberingXML()
	instances := doc.Root().SelectElements("w:num")
	// shared bullet instance plus one per ordered list plus the references list
	if len(instances) != 4 {
		t.Fatalf("instance count = %d, want 4", len(instances))
	}

	bullets, decimals := 0, 0
	for _, num := range instances {
		abstract := num.FindElement("w:abstractNumId").SelectAttrValue("w:val", "")
		switch abstract {
		case "0":
			bullets++
		case "1":
			decimals++
		default:
			t.Errorf("unexpected abstract id %s", abstract)
		}
	}
	if bullets != 1 || decimals != 3 {
		t.Errorf("bullets = %d, decimals = %d, want 1 and 3", bullets, decimals)
	}
}

func TestNumberingXML_Levels(t *testing.T) {
	b := NewBuilder(testOptions(), zap.NewNop())
	doc := b.numberingXML()

	abstracts := doc.Root().SelectElements("w:abstractNum")
	if len(abstracts) != 2 {
		t.Fatalf("abstract count = %d, want 2", len(abstracts))
	}
	for _, abstract := range abstracts {
		if levels := abstract.SelectElements("w:lvl"); len(levels) != 9 {
			t.Errorf("level count = %d, want 9", len(levels))
		}
	}

	// bullet glyphs cycle every three levels
	bullet := abstracts[0]
	levels := bullet.SelectElements("w:lvl")
	for i, want := range []string{"•", "◦", "▪", "•"} {
		glyph := levels[i].FindElement("w:lvlText").SelectAttrValue("w:val", "")
		if glyph != want {
			t.Errorf("level %d glyph = %q, want %q", i, glyph, want)
		}
	}

	// decimal levels reference their own counter
	decimal := abstracts[1]
	second := decimal.SelectElements("w:lvl")[1]
	if got := second.FindElement("w:lvlText").SelectAttrValue("w:val", ""); got != "%2." {
		t.Errorf("decimal level 1 text = %q, want %%2.", got)
	}
}

func TestListParagraphNumbering(t *testing.T) {
	b := NewBuilder(testOptions(), zap.NewNop())
	text := []markdown.Span{{Kind: markdown.SpanText, Text: "item"}}
	md := &markdown.Document{Blocks: []markdown.Block{
		markdown.List{Items: []markdown.ListItem{{Indent: 0, Spans: text}, {Indent: 12, Spans: text}}},
		markdown.List{Ordered: true, Items: []markdown.ListItem{{Spans: text}}},
	}}
	if err := b.Build(context.Background(), md, nil); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	paragraphs := b.body.SelectElements("w:p")
	if len(paragraphs) != 3 {
		t.Fatalf("paragraph count = %d, want 3", len(paragraphs))
	}

	numID := func(p int) string {
		return paragraphs[p].FindElement("w:pPr/w:numPr/w:numId").SelectAttrValue("w:val", "")
	}
	ilvl := func(p int) string {
		return paragraphs[p].FindElement("w:pPr/w:numPr/w:ilvl").SelectAttrValue("w:val", "")
	}

	if numID(0) != "1" || numID(1) != "1" {
		t.Errorf("bullet numIds = %s, %s, want shared instance 1", numID(0), numID(1))
	}
	if numID(2) != "2" {
		t.Errorf("ordered numId = %s, want 2", numID(2))
	}
	// indent depth caps at the deepest defined level
	if ilvl(1) != "8" {
		t.Errorf("capped ilvl = %s, want 8", ilvl(1))
	}
}
