// Package archive builds part access abstractions on top of "archive/zip".
// Word documents are OPC packages, ordinary zip containers whose entries are
// the document parts.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each part visited by Walk.
// The pkg argument is the package path passed to Walk, the file argument is
// the zip.File for a part whose name starts with the requested prefix. If an
// error is returned, processing stops.
type WalkFunc func(pkg string, file *zip.File) error

// Walk visits all parts of the package whose names match prefix, calling
// walkFn for each. Directory entries are skipped; a part with a path
// traversal component ("..") or an absolute name aborts the walk to prevent
// Zip Slip attacks.
func Walk(pkg, prefix string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(pkg)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePartName(name) {
			return fmt.Errorf("package part %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(pkg, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadPart returns the content of a single named part. Missing part is an
// error, part names are matched exactly.
func ReadPart(pkg, name string) ([]byte, error) {
	var data []byte
	err := Walk(pkg, name, func(_ string, f *zip.File) error {
		if f.Name != name || data != nil {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("package %s has no part %q", pkg, name)
	}
	return data, nil
}

// isSafePartName returns false for names that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePartName(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
