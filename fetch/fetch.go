// Package fetch obtains image bytes for embedding. Every strategy is capped
// at the configured limit and fails closed: oversized or unreachable content
// yields an error, never truncated bytes.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"mdc/config"
	"mdc/store"
)

var (
	dataURLRe = regexp.MustCompile(`(?i)^data:image/[a-zA-Z0-9.+-]+;base64,(?P<b64>[A-Za-z0-9+/=\s]+)$`)
	fileIDRe  = regexp.MustCompile(`/api/v1/files/(?P<id>[A-Za-z0-9-]+)(?:/content)?(?:[/?#]|$)`)
)

const userAgent = "mdc-export"

// FileStore looks up stored-file records by id. Nil record means unknown id.
type FileStore interface {
	FileByID(id string) (*store.FileRecord, error)
}

// Fetcher resolves markdown image urls to raw bytes. Implements the document
// builder's image resolver contract.
type Fetcher struct {
	cfg   *config.FetchConfig
	dirs  []string
	limit int64
	files FileStore // nil disables stored-file strategies
	http  *http.Client
	log   *zap.Logger

	s3Once   sync.Once
	s3Client *s3.Client
	s3Err    error
}

func New(cfg *config.FetchConfig, images *config.ImagesConfig, files FileStore, log *zap.Logger) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		cfg:   cfg,
		dirs:  images.DataDirs,
		limit: images.MaxEmbedBytes(),
		files: files,
		http:  &http.Client{Timeout: timeout},
		log:   log,
	}
}

// Resolve classifies the url and runs the matching strategy. External urls
// are never fetched. Error text is user-facing placeholder material.
func (f *Fetcher) Resolve(ctx context.Context, url string) ([]byte, error) {
	u := strings.TrimSpace(url)
	if strings.HasPrefix(strings.ToLower(u), "data:") {
		data, err := f.decodeDataURL(u)
		if err != nil {
			return nil, fmt.Errorf("invalid data URL or exceeds %dMB", f.limit>>20)
		}
		return data, nil
	}
	if id := ExtractFileID(u); id != "" {
		data, err := f.fileByID(ctx, id)
		if err != nil {
			f.log.Debug("Stored file fetch failed", zap.String("id", id), zap.Error(err))
			return nil, fmt.Errorf("file unavailable (%s)", id)
		}
		return data, nil
	}
	return nil, fmt.Errorf("external URL")
}

// ExtractFileID pulls the stored-file id out of an API content url.
func ExtractFileID(url string) string {
	m := fileIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[fileIDRe.SubexpIndex("id")]
}

// decodeDataURL base64-decodes with an expansion pre-check so a multi
// gigabyte payload is rejected before allocation.
func (f *Fetcher) decodeDataURL(u string) ([]byte, error) {
	m := dataURLRe.FindStringSubmatch(u)
	if m == nil {
		return nil, fmt.Errorf("not an image data URL")
	}
	b64 := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, m[dataURLRe.SubexpIndex("b64")])
	if estimated := int64(len(b64)) / 4 * 3; estimated > f.limit {
		return nil, fmt.Errorf("decoded size %d exceeds limit", estimated)
	}
	if pad := len(b64) % 4; pad != 0 {
		b64 += strings.Repeat("=", 4-pad)
	}
	out, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	if int64(len(out)) > f.limit {
		return nil, fmt.Errorf("decoded size %d exceeds limit", len(out))
	}
	return out, nil
}

// fileByID runs the strategy chain over a stored-file record: inline bytes,
// object storage, local disk, public url, authenticated API.
func (f *Fetcher) fileByID(ctx context.Context, id string) ([]byte, error) {
	var rec *store.FileRecord
	if f.files != nil {
		var err error
		rec, err = f.files.FileByID(id)
		if err != nil {
			f.log.Warn("File record lookup failed", zap.String("id", id), zap.Error(err))
		}
	}
	if rec != nil {
		if rec.InlineB64 != "" {
			if data, err := f.decodeInline(rec.InlineB64); err == nil {
				return data, nil
			}
		}
		if strings.HasPrefix(rec.Path, "s3://") {
			if data, err := f.readS3(ctx, rec.Path); err == nil {
				return data, nil
			} else {
				f.log.Warn("Object storage read failed", zap.String("path", rec.Path), zap.Error(err))
			}
		}
		if data := f.readDisk(rec.Path); data != nil {
			return data, nil
		}
		if data := f.readURL(ctx, rec.URL, ""); data != nil {
			return data, nil
		}
	}
	if base := strings.TrimSuffix(f.cfg.API.BaseURL, "/"); base != "" {
		apiURL := fmt.Sprintf("%s/api/v1/files/%s/content", base, id)
		if data := f.readURL(ctx, apiURL, f.cfg.API.Token.Value()); data != nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no content accessible")
}

func (f *Fetcher) decodeInline(b64 string) ([]byte, error) {
	if estimated := int64(len(b64)) / 4 * 3; estimated > f.limit {
		return nil, fmt.Errorf("inline content exceeds limit")
	}
	out, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > f.limit {
		return nil, fmt.Errorf("inline content exceeds limit")
	}
	return out, nil
}

// readDisk tries the path as given and then under each configured data root.
// Non-local paths are skipped.
func (f *Fetcher) readDisk(path string) []byte {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	lower := strings.ToLower(path)
	for _, scheme := range []string{"s3://", "gs://", "http://", "https://"} {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		for _, dir := range f.dirs {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}
	for _, candidate := range candidates {
		if data := f.readFileLimited(candidate); data != nil {
			return data
		}
	}
	return nil
}

func (f *Fetcher) readFileLimited(path string) []byte {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() || fi.Size() > f.limit {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil || int64(len(data)) > f.limit {
		return nil
	}
	return data
}

func (f *Fetcher) readURL(ctx context.Context, url, token string) []byte {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		f.log.Debug("Download failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	data, err := readLimited(resp.Body, f.limit)
	if err != nil {
		f.log.Debug("Download rejected", zap.String("url", url), zap.Error(err))
		return nil
	}
	return data
}

// readLimited reads at most limit bytes and fails when more are available.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("content exceeds %d bytes", limit)
	}
	return data, nil
}
