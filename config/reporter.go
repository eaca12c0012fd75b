package config

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
)

type ReporterConfig struct {
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
}

// Report implements debug reporter functionality. When requested everything is stored in a single zip archive.
type Report struct {
	mu    sync.Mutex
	fname string
	files map[string]string
	datum map[string][]byte
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	return &Report{
		fname: conf.Destination,
		files: make(map[string]string),
		datum: make(map[string][]byte),
	}, nil
}

// Store requests that file fpath is saved in the final report under the name key.
func (r *Report) Store(key, fpath string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[key] = fpath
}

// StoreData requests that data is saved in the final report under the name key.
func (r *Report) StoreData(key string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datum[key] = data
}

// Close builds the report archive. It is always called at the end of the run.
func (r *Report) Close() (err error) {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.files) == 0 && len(r.datum) == 0 {
		return nil
	}

	f, err := os.Create(r.fname)
	if err != nil {
		return fmt.Errorf("unable to create report file (%s): %w", r.fname, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	w := zip.NewWriter(f)
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	saveFile := func(key, fpath string) error {
		src, err := os.Open(fpath)
		if err != nil {
			return fmt.Errorf("unable to open file (%s) for report: %w", fpath, err)
		}
		defer src.Close()

		fi, err := src.Stat()
		if err != nil {
			return fmt.Errorf("unable to stat file (%s) for report: %w", fpath, err)
		}
		hdr, err := zip.FileInfoHeader(fi)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(key)
		hdr.Method = zip.Deflate

		dst, err := w.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = io.Copy(dst, src)
		return err
	}

	for key, fpath := range r.files {
		if e := saveFile(key, fpath); e != nil {
			err = multierr.Append(err, e)
		}
	}
	for key, data := range r.datum {
		hdr := &zip.FileHeader{
			Name:     filepath.ToSlash(key),
			Method:   zip.Deflate,
			Modified: time.Now(),
		}
		dst, e := w.CreateHeader(hdr)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		if _, e := dst.Write(data); e != nil {
			err = multierr.Append(err, e)
		}
	}
	return err
}

// Name returns report destination or empty string if reporter is not active.
func (r *Report) Name() string {
	if r == nil {
		return ""
	}
	return r.fname
}

// Keys returns sorted list of everything presently stored in the report, mostly for tests.
func (r *Report) Keys() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.files)+len(r.datum))
	for k := range r.files {
		keys = append(keys, k)
	}
	for k := range r.datum {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if strings.Compare(keys[j], keys[i]) < 0 {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}
