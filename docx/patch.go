package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mdc/archive"
	"mdc/utils/images"
)

// PatchManifest lists rendered SVGs in placeholder document order. Each
// entry carries the bytes inline or points at a file.
type PatchManifest struct {
	Diagrams []PatchDiagram `json:"diagrams"`
}

type PatchDiagram struct {
	SVGBase64 string `json:"svg_b64,omitempty"`
	SVGPath   string `json:"svg_path,omitempty"`
}

// LoadPatchManifest reads and decodes a manifest file. Relative svg paths
// resolve against the manifest location.
func LoadPatchManifest(path string) (*PatchManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read patch manifest: %w", err)
	}
	var m PatchManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unable to decode patch manifest: %w", err)
	}
	base := filepath.Dir(path)
	for i := range m.Diagrams {
		if p := m.Diagrams[i].SVGPath; p != "" && !filepath.IsAbs(p) {
			m.Diagrams[i].SVGPath = filepath.Join(base, p)
		}
	}
	return &m, nil
}

func (d *PatchDiagram) bytes() ([]byte, error) {
	if d.SVGBase64 != "" {
		return base64.StdEncoding.DecodeString(d.SVGBase64)
	}
	if d.SVGPath != "" {
		return os.ReadFile(d.SVGPath)
	}
	return nil, fmt.Errorf("manifest entry carries no svg")
}

// Patch splices rendered diagrams into a packaged document: for every
// placeholder annotation it rasterizes the matching SVG, replaces both media
// parts and recomputes the display extents. Placeholders without a manifest
// entry stay untouched, so a partial render still yields a valid document.
func Patch(ctx context.Context, inputPath, outputPath string, manifest *PatchManifest, params RenderParams, fixZip bool, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parts, order, err := readPackageParts(inputPath)
	if err != nil {
		return err
	}
	docData, ok := parts["word/document.xml"]
	if !ok {
		return fmt.Errorf("package %s carries no document part", inputPath)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docData); err != nil {
		return fmt.Errorf("unable to parse document part: %w", err)
	}
	relTargets, err := parseRelTargets(parts["word/_rels/document.xml.rels"])
	if err != nil {
		return err
	}

	anchors := findPlaceholderAnchors(doc.Root())
	log.Info("Patching rendered diagrams", zap.Int("placeholders", len(anchors)),
		zap.Int("rendered", len(manifest.Diagrams)))

	patched := 0
	for i, anchor := range anchors {
		if i >= len(manifest.Diagrams) {
			log.Warn("No rendered diagram for placeholder, leaving it as is", zap.Int("index", i+1))
			continue
		}
		svgBytes, err := manifest.Diagrams[i].bytes()
		if err != nil {
			log.Warn("Unable to load rendered diagram", zap.Int("index", i+1), zap.Error(err))
			continue
		}
		if err := patchAnchor(anchor, svgBytes, params, relTargets, parts); err != nil {
			log.Warn("Unable to patch diagram", zap.Int("index", i+1), zap.Error(err))
			continue
		}
		patched++
	}
	log.Info("Diagram patch finished", zap.Int("patched", patched))

	out, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("unable to serialize patched document: %w", err)
	}
	parts["word/document.xml"] = out

	return writePackageParts(outputPath, parts, order, fixZip)
}

// placeholderAnchor ties together the XML nodes a single splice touches.
type placeholderAnchor struct {
	docPr  *etree.Element
	inline *etree.Element
	source string
}

func findPlaceholderAnchors(root *etree.Element) []placeholderAnchor {
	var anchors []placeholderAnchor
	walkElements(root, func(el *etree.Element) {
		if el.Tag != "docPr" {
			return
		}
		descr := el.SelectAttrValue("descr", "")
		if !strings.HasPrefix(descr, mermaidDescrPrefix) {
			return
		}
		anchors = append(anchors, placeholderAnchor{
			docPr:  el,
			inline: el.Parent(),
			source: percentDecode(strings.TrimPrefix(descr, mermaidDescrPrefix)),
		})
	})
	return anchors
}

func patchAnchor(anchor placeholderAnchor, svgBytes []byte, params RenderParams, relTargets map[string]string, parts map[string][]byte) error {
	if anchor.inline == nil {
		return fmt.Errorf("annotation without drawing")
	}

	blip := findFirst(anchor.inline, "blip")
	if blip == nil {
		return fmt.Errorf("drawing without blip")
	}
	pngPart, err := mediaPartName(blip.SelectAttrValue("r:embed", ""), relTargets)
	if err != nil {
		return err
	}
	svgBlip := findFirst(anchor.inline, "svgBlip")
	if svgBlip == nil {
		return fmt.Errorf("drawing without svg companion")
	}
	svgPart, err := mediaPartName(svgBlip.SelectAttrValue("r:embed", ""), relTargets)
	if err != nil {
		return err
	}

	intrW, intrH, err := images.IntrinsicSVGSize(svgBytes)
	if err != nil {
		return fmt.Errorf("unable to measure rendered svg: %w", err)
	}

	scale := params.PNGScale
	if scale < 1 {
		scale = 1
	}
	img, err := images.RasterizeSVGToImage(svgBytes, int(math.Round(float64(intrW)*scale)), 0, parseBackground(params.Background))
	if err != nil {
		return fmt.Errorf("unable to rasterize rendered svg: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("unable to encode diagram png: %w", err)
	}

	display := params.DisplayScale
	if display <= 0 || display > 1 {
		display = 1
	}
	widthEMU := int64(math.Round(display * float64(ContentWidthEMU)))
	heightEMU := widthEMU * int64(intrH) / int64(intrW)
	updateExtents(anchor.inline, widthEMU, heightEMU)

	parts[pngPart] = buf.Bytes()
	parts[svgPart] = svgBytes
	return nil
}

func updateExtents(inline *etree.Element, cx, cy int64) {
	walkElements(inline, func(el *etree.Element) {
		if el.Tag != "extent" && el.Tag != "ext" {
			return
		}
		if el.SelectAttr("cx") == nil {
			return
		}
		el.CreateAttr("cx", strconv.FormatInt(cx, 10))
		el.CreateAttr("cy", strconv.FormatInt(cy, 10))
	})
}

func mediaPartName(rid string, relTargets map[string]string) (string, error) {
	if rid == "" {
		return "", fmt.Errorf("blip without relationship id")
	}
	target, ok := relTargets[rid]
	if !ok {
		return "", fmt.Errorf("relationship %s not found", rid)
	}
	return "word/" + target, nil
}

func parseRelTargets(data []byte) (map[string]string, error) {
	if data == nil {
		return nil, fmt.Errorf("package carries no document relationships part")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse document relationships: %w", err)
	}
	targets := make(map[string]string)
	for _, rel := range doc.Root().ChildElements() {
		targets[rel.SelectAttrValue("Id", "")] = rel.SelectAttrValue("Target", "")
	}
	return targets, nil
}

// readPackageParts loads every entry of the package into memory preserving
// archive order.
func readPackageParts(path string) (map[string][]byte, []string, error) {
	parts := make(map[string][]byte)
	var order []string
	err := archive.Walk(path, "", func(_ string, f *zip.File) error {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open package entry %s: %w", f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return fmt.Errorf("unable to read package entry %s: %w", f.Name, err)
		}
		parts[f.Name] = data
		order = append(order, f.Name)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read package %s: %w", path, err)
	}
	return parts, order, nil
}

func writePackageParts(outputPath string, parts map[string][]byte, order []string, fixZip bool) error {
	tmpName := outputPath + ".tmp"
	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	for _, name := range order {
		if err := writeDataToZip(zw, name, parts[name]); err != nil {
			return fmt.Errorf("unable to write package entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	defer os.Remove(tmpName)

	if fixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return copyFile(tmpName, outputPath)
}

// parseBackground accepts a 6 digit hex color with optional leading hash.
// Anything else means transparent.
func parseBackground(s string) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

func walkElements(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		walkElements(child, fn)
	}
}

func findFirst(el *etree.Element, tag string) *etree.Element {
	var found *etree.Element
	walkElements(el, func(e *etree.Element) {
		if found == nil && e.Tag == tag {
			found = e
		}
	})
	return found
}
