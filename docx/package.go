package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
)

const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

	ctDocument  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
)

// Save serializes the built document into a docx container at outputPath.
// The archive is staged in workDir first so a failed write never leaves a
// truncated document behind.
func (b *Builder) Save(ctx context.Context, outputPath, workDir string, fixZip bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.log.Info("Writing document package", zap.String("output", outputPath),
		zap.Int("media", len(b.media)), zap.Int("relationships", len(b.rels)))

	_, tmpName := filepath.Split(outputPath)
	tmpName = filepath.Join(workDir, tmpName)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := b.writeParts(zw); err != nil {
		return err
	}

	// make sure buffers are flushed before continuing
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

func (b *Builder) writeParts(zw *zip.Writer) error {
	if err := writeXMLToZip(zw, "[Content_Types].xml", b.contentTypesXML()); err != nil {
		return fmt.Errorf("unable to write content types: %w", err)
	}
	if err := writeXMLToZip(zw, "_rels/.rels", packageRelsXML()); err != nil {
		return fmt.Errorf("unable to write package relationships: %w", err)
	}
	if err := writeXMLToZip(zw, "word/document.xml", b.doc); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	if err := writeXMLToZip(zw, "word/_rels/document.xml.rels", b.documentRelsXML()); err != nil {
		return fmt.Errorf("unable to write document relationships: %w", err)
	}
	if err := writeXMLToZip(zw, "word/styles.xml", b.stylesXML()); err != nil {
		return fmt.Errorf("unable to write styles: %w", err)
	}
	if err := writeXMLToZip(zw, "word/numbering.xml", b.numberingXML()); err != nil {
		return fmt.Errorf("unable to write numbering: %w", err)
	}
	for _, m := range b.media {
		if err := writeDataToZip(zw, "word/media/"+m.Name, m.Data); err != nil {
			return fmt.Errorf("unable to write media part %s: %w", m.Name, err)
		}
	}
	return nil
}

// contentTypesXML declares one extension default per media format present
// plus the fixed part overrides.
func (b *Builder) contentTypesXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")

	addDefault := func(ext, contentType string) {
		def := types.CreateElement("Default")
		def.CreateAttr("Extension", ext)
		def.CreateAttr("ContentType", contentType)
	}
	addDefault("rels", "application/vnd.openxmlformats-package.relationships+xml")
	addDefault("xml", "application/xml")

	byExt := make(map[string]string)
	for _, m := range b.media {
		ext := filepath.Ext(m.Name)
		if len(ext) > 1 {
			byExt[ext[1:]] = m.ContentType
		}
	}
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		addDefault(ext, byExt[ext])
	}

	addOverride := func(part, contentType string) {
		ov := types.CreateElement("Override")
		ov.CreateAttr("PartName", part)
		ov.CreateAttr("ContentType", contentType)
	}
	addOverride("/word/document.xml", ctDocument)
	addOverride("/word/styles.xml", ctStyles)
	addOverride("/word/numbering.xml", ctNumbering)
	return doc
}

func packageRelsXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", relTypeOfficeDocument)
	rel.CreateAttr("Target", "word/document.xml")
	return doc
}

func (b *Builder) documentRelsXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	for _, r := range b.rels {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", r.ID)
		rel.CreateAttr("Type", r.Type)
		rel.CreateAttr("Target", r.Target)
		if r.External {
			rel.CreateAttr("TargetMode", "External")
		}
	}
	return doc
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// copyZipWithoutDataDescriptors rewrites the archive dropping streaming data
// descriptors, which some Word importers choke on.
func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err := io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	return destinationFile.Sync()
}
