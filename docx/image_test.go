package docx

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

type fakeResolver struct {
	data []byte
	err  error
}

func (r *fakeResolver) Resolve(_ context.Context, _ string) ([]byte, error) {
	return r.data, r.err
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func paragraphText(p *etree.Element) string {
	var sb strings.Builder
	for _, text := range p.FindElements("w:r/w:t") {
		sb.WriteString(text.Text())
	}
	return sb.String()
}

func TestAppendInlineImage_Embeds(t *testing.T) {
	data := testPNG(t, 4, 2)
	b := NewBuilder(Options{Images: &fakeResolver{data: data}}, zap.NewNop())

	p := b.newParagraph()
	b.appendInlineImage(context.Background(), p, "chart", "https://example.com/chart.png")

	if len(b.media) != 1 {
		t.Fatalf("expected 1 media part, got %d", len(b.media))
	}
	if b.media[0].ContentType != "image/png" {
		t.Errorf("content type = %s, want image/png", b.media[0].ContentType)
	}

	extent := p.FindElement("w:r/w:drawing/wp:inline/wp:extent")
	if extent == nil {
		t.Fatal("embedded image has no extent")
	}
	// width pins to the content width, height follows the 4:2 aspect
	if extent.SelectAttrValue("cx", "") != "5943600" {
		t.Errorf("cx = %s, want 5943600", extent.SelectAttrValue("cx", ""))
	}
	if extent.SelectAttrValue("cy", "") != "2971800" {
		t.Errorf("cy = %s, want 2971800", extent.SelectAttrValue("cy", ""))
	}
}

func TestAppendInlineImage_Placeholders(t *testing.T) {
	tests := []struct {
		name     string
		images   ImageResolver
		url      string
		wantText string
	}{
		{
			name:     "missing url",
			images:   &fakeResolver{},
			url:      "   ",
			wantText: "[pic not embedded: missing URL]",
		},
		{
			name:     "embedding disabled",
			images:   nil,
			url:      "https://example.com/a.png",
			wantText: "[pic not embedded: embedding disabled]",
		},
		{
			name:     "resolver failure",
			images:   &fakeResolver{err: errors.New("external URL")},
			url:      "https://example.com/a.png",
			wantText: "[pic not embedded: external URL]",
		},
		{
			name:     "unsupported bytes",
			images:   &fakeResolver{data: []byte("<html>not an image</html>")},
			url:      "https://example.com/a.png",
			wantText: "[pic not embedded: unsupported image type: unrecognized format]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Options{Images: tt.images}, zap.NewNop())
			p := b.newParagraph()
			b.appendInlineImage(context.Background(), p, "pic", tt.url)

			if len(b.media) != 0 {
				t.Errorf("no media parts expected, got %d", len(b.media))
			}
			if got := paragraphText(p); got != tt.wantText {
				t.Errorf("placeholder = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestAppendImagePlaceholder_EmptyAlt(t *testing.T) {
	b := NewBuilder(Options{}, zap.NewNop())
	p := b.newParagraph()
	b.appendImagePlaceholder(p, "  ", "missing URL")

	if got := paragraphText(p); got != "[image not embedded: missing URL]" {
		t.Errorf("placeholder = %q", got)
	}
}
