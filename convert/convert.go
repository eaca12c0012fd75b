// Package convert drives a single transcript export end to end: reasoning
// strip, title and filename resolution, markdown assembly, document build,
// packaging and the render handoff for deferred diagrams.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"mdc/common"
	"mdc/config"
	"mdc/docx"
	"mdc/markdown"
	"mdc/refs"
	"mdc/state"
)

// ErrNoContent means the transcript is empty after reasoning strip. The
// caller should treat it as user error, not an export failure.
var ErrNoContent = errors.New("no content found to export")

// Request is one transcript to export.
type Request struct {
	Markdown  string
	ChatID    string
	UserName  string
	Sources   []refs.SourceGroup
	OutputDir string
}

// Result describes the produced artifacts.
type Result struct {
	Path     string
	FileName string
	Diagrams int
	Sidecar  string // render handoff, empty when no diagrams
}

// Converter holds per-process collaborators. One Run per conversion.
type Converter struct {
	cfg     *config.Config
	log     *zap.Logger
	emitter Emitter
	chats   ChatStore          // nil disables chat title lookups
	images  docx.ImageResolver // nil disables image embedding
	lang    string
}

func New(cfg *config.Config, log *zap.Logger, emitter Emitter, chats ChatStore, images docx.ImageResolver) *Converter {
	if emitter == nil {
		emitter = NewLogEmitter(log)
	}
	return &Converter{
		cfg:     cfg,
		log:     log,
		emitter: emitter,
		chats:   chats,
		images:  images,
		lang:    langKey(cfg.Document.UILanguage),
	}
}

func (c *Converter) msg(key string, args map[string]string) string {
	return Msg(c.lang, key, args)
}

// Run converts one transcript. Per-element failures inside the document are
// contained and degrade to placeholders; only orchestration failures return
// an error.
func (c *Converter) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := c.run(ctx, req)
	switch {
	case errors.Is(err, ErrNoContent):
		c.emitter.Notify(ctx, common.NotifyTypeError, c.msg("error_no_content", nil))
	case err != nil:
		c.emitter.Status(ctx, Status{Description: c.msg("export_failed", map[string]string{"error": err.Error()}), Done: true})
		c.emitter.Notify(ctx, common.NotifyTypeError, c.msg("error_export", map[string]string{"error": err.Error()}))
	}
	return res, err
}

func (c *Converter) run(ctx context.Context, req Request) (*Result, error) {
	env := state.EnvFromContext(ctx)
	doc := &c.cfg.Document

	c.emitter.Status(ctx, Status{Description: c.msg("converting", nil)})

	content := StripReasoning(req.Markdown)
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoContent
	}
	env.Rpt.StoreData("input.md", []byte(content))

	resolver := &titleResolver{cfg: &doc.Title, api: &c.cfg.Fetch.API, chats: c.chats, log: c.log}
	title, chatTitle := resolver.Resolve(ctx, req.ChatID, content)

	fileName, err := expandFileName(doc, title, chatTitle, req.ChatID, req.UserName, time.Now())
	if err != nil {
		return nil, err
	}
	outputPath := filepath.Join(req.OutputDir, fileName)
	if !env.Overwrite {
		if _, err := os.Stat(outputPath); err == nil {
			return nil, fmt.Errorf("output file already exists: %s", outputPath)
		}
	}

	topHeading := chatTitle
	if topHeading == "" {
		topHeading = title
	}

	references := refs.Build(req.Sources)
	anchors := refs.AnchorByIndex(references)

	assembler := &markdown.Assembler{
		Resolver: &markdown.Resolver{
			MathEnable:   doc.Math.Enable,
			InlineDollar: doc.Math.InlineDollar,
			AnchorForIndex: func(idx int) string {
				return anchors[idx]
			},
		},
		MathEnable:     doc.Math.Enable,
		CaptionsEnable: doc.Diagram.Captions.Enable,
		OptimizeLayout: doc.Diagram.OptimizeLayout,
		AvailableWidth: docx.ContentWidthTwips,
		MinCellWidth:   docx.MinCellWidthTwips,
		TopHeading:     topHeading,
		Progress: func(percent int) {
			c.emitter.Status(ctx, Status{
				Description: fmt.Sprintf("%s (%d%%)", c.msg("converting", nil), percent),
			})
		},
	}
	md := assembler.Assemble(content)

	captionPrefix := strings.TrimSpace(doc.Diagram.Captions.Prefix)
	if captionPrefix == "" {
		captionPrefix = c.msg("figure_prefix", nil)
	}
	builder := docx.NewBuilder(docx.Options{
		FontLatin:        doc.Fonts.Latin,
		FontAsian:        doc.Fonts.Asian,
		FontCode:         doc.Fonts.Code,
		TableHeaderColor: doc.Table.HeaderColor,
		TableZebraColor:  doc.Table.ZebraColor,
		MathEnable:       doc.Math.Enable,
		CaptionsEnable:   doc.Diagram.Captions.Enable,
		CaptionStyle:     doc.Diagram.Captions.Style,
		CaptionPrefix:    captionPrefix,
		ReferencesTitle:  c.msg("references", nil),
		Images:           c.images,
	}, c.log.Named("docx"))

	if err := builder.Build(ctx, md, references); err != nil {
		return nil, fmt.Errorf("unable to build document: %w", err)
	}

	workDir, err := os.MkdirTemp("", "mdc-")
	if err != nil {
		return nil, fmt.Errorf("unable to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := builder.Save(ctx, outputPath, workDir, doc.FixZip); err != nil {
		return nil, fmt.Errorf("unable to package document: %w", err)
	}

	result := &Result{
		Path:     outputPath,
		FileName: fileName,
		Diagrams: builder.DiagramCount(),
	}
	if result.Diagrams > 0 {
		sidecar, err := docx.WriteRenderHandoff(outputPath, fileName, result.Diagrams, docx.RenderParams{
			PNGScale:       doc.Diagram.PNGScale,
			DisplayScale:   doc.Diagram.DisplayScale,
			Background:     doc.Diagram.Background,
			OptimizeLayout: doc.Diagram.OptimizeLayout,
		})
		if err != nil {
			return nil, err
		}
		result.Sidecar = sidecar
		c.log.Info("Render handoff written", zap.String("sidecar", sidecar), zap.Int("diagrams", result.Diagrams))
	}

	c.emitter.Status(ctx, Status{Description: c.msg("exported", nil), Done: true})
	c.emitter.Notify(ctx, common.NotifyTypeSuccess, c.msg("success", map[string]string{"filename": fileName}))
	return result, nil
}
