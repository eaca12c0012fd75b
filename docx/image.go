package docx

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"mdc/markdown"
)

// ImageResolver turns a markdown image URL into raw image bytes. The url can
// be a data URL, an API file reference or anything else the fetch policy
// allows. Errors carry the human readable reason shown in the placeholder.
type ImageResolver interface {
	Resolve(ctx context.Context, url string) ([]byte, error)
}

// appendInlineImage embeds an image run, or a bracketed placeholder when the
// bytes cannot be obtained or decoded. Failures never abort the conversion.
func (b *Builder) appendInlineImage(ctx context.Context, p *etree.Element, alt, url string) {
	u := strings.TrimSpace(url)
	if u == "" {
		b.appendImagePlaceholder(p, alt, "missing URL")
		return
	}
	if b.opts.Images == nil {
		b.appendImagePlaceholder(p, alt, "embedding disabled")
		return
	}
	data, err := b.opts.Images.Resolve(ctx, u)
	if err != nil {
		b.log.Debug("Image not embedded", zap.String("url", u), zap.Error(err))
		b.appendImagePlaceholder(p, alt, err.Error())
		return
	}
	if err := b.embedImage(p, alt, data); err != nil {
		b.appendImagePlaceholder(p, alt, "unsupported image type: "+err.Error())
	}
}

// embedImage sniffs the format, registers a media part and emits the drawing
// scaled to the full content width.
func (b *Builder) embedImage(p *etree.Element, alt string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image bytes")
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return fmt.Errorf("unrecognized format")
	}
	switch kind.Extension {
	case "png", "jpg", "gif", "bmp", "tif":
	default:
		return fmt.Errorf("format %s not supported", kind.Extension)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("zero dimensions")
	}

	rid, _ := b.addMedia(kind.Extension, kind.MIME.Value, data)
	widthEMU := int64(ContentWidthEMU)
	heightEMU := widthEMU * int64(cfg.Height) / int64(cfg.Width)

	b.appendDrawing(p, drawingSpec{
		RID:      rid,
		WidthEMU: widthEMU,
		Height:   heightEMU,
		Name:     fmt.Sprintf("Image %d", len(b.media)),
		Title:    strings.TrimSpace(alt),
	})
	return nil
}

func (b *Builder) appendImagePlaceholder(p *etree.Element, alt, reason string) {
	label := strings.TrimSpace(alt)
	if label == "" {
		label = "image"
	}
	b.appendTextRun(p, fmt.Sprintf("[%s not embedded: %s]", label, reason), markdown.Style{}, runProps{})
}
