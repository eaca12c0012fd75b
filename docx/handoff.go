package docx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// RenderHandoff is the sidecar contract for the out-of-band diagram
// renderer: the packaged document plus every knob the renderer needs to
// produce media the patch step can splice back.
type RenderHandoff struct {
	ID             string  `json:"id"`
	FileName       string  `json:"filename"`
	DocumentBase64 string  `json:"document_b64"`
	Diagrams       int     `json:"diagrams"`
	PNGScale       float64 `json:"png_scale"`
	DisplayScale   float64 `json:"display_scale"`
	Background     string  `json:"background"`
	OptimizeLayout bool    `json:"optimize_layout"`
}

// RenderParams mirrors the configuration slice the renderer cares about.
type RenderParams struct {
	PNGScale       float64
	DisplayScale   float64
	Background     string
	OptimizeLayout bool
}

// DiagramCount reports how many placeholder drawings went into the document.
func (b *Builder) DiagramCount() int {
	return b.placeholderCounter
}

// WriteRenderHandoff stores the sidecar json next to the packaged document.
// Called only when the document actually contains placeholders.
func WriteRenderHandoff(docPath, fileName string, diagrams int, params RenderParams) (string, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return "", fmt.Errorf("unable to read packaged document: %w", err)
	}
	h := RenderHandoff{
		ID:             uuid.New().String(),
		FileName:       fileName,
		DocumentBase64: base64.StdEncoding.EncodeToString(data),
		Diagrams:       diagrams,
		PNGScale:       params.PNGScale,
		DisplayScale:   params.DisplayScale,
		Background:     params.Background,
		OptimizeLayout: params.OptimizeLayout,
	}
	payload, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", fmt.Errorf("unable to serialize render handoff: %w", err)
	}
	sidecar := docPath + ".render.json"
	if err := os.WriteFile(sidecar, payload, 0644); err != nil {
		return "", fmt.Errorf("unable to write render handoff: %w", err)
	}
	return sidecar, nil
}
