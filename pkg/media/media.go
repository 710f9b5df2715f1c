// Package media stages uploaded images on local disk, forwards them to the
// media host and reports a typed result per file slot.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"anoa.com/welfaredesk/pkg/apperror"
	"anoa.com/welfaredesk/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize int64 = 5 << 20

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// Files is the file part of a multipart form keyed by field name.
type Files map[string][]*multipart.FileHeader

// FromForm tolerates a nil form so JSON-only edits carry no files.
func FromForm(form *multipart.Form) Files {
	if form == nil {
		return Files{}
	}
	return Files(form.File)
}

// FromRequest returns the files of a multipart request; any other body yields
// an empty set.
func FromRequest(r *http.Request) Files {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return Files{}
		}
	}
	return FromForm(r.MultipartForm)
}

func (f Files) first(field string) *multipart.FileHeader {
	if headers := f[field]; len(headers) > 0 {
		return headers[0]
	}
	return nil
}

// Has reports whether any of the slots carries a file.
func (f Files) Has(slots ...Slot) bool {
	for _, slot := range slots {
		if f.first(slot.Field) != nil {
			return true
		}
	}
	return false
}

// Slot is a named file field of an operation.
type Slot struct {
	Field    string
	Label    string
	Required bool
}

// Result is the outcome of one slot: either a hosted URL or the reason it
// has none.
type Result struct {
	Field string
	URL   string
	Err   error
}

func (r Result) OK() bool {
	return r.Err == nil && r.URL != ""
}

// Batch holds the results of one commit.
type Batch struct {
	host    storage.ImageStorage
	log     *zap.Logger
	results []Result
}

// URL returns the hosted URL of a slot that uploaded successfully.
func (b *Batch) URL(field string) (string, bool) {
	if b == nil {
		return "", false
	}
	for _, r := range b.results {
		if r.Field == field && r.OK() {
			return r.URL, true
		}
	}
	return "", false
}

func (b *Batch) Results() []Result {
	if b == nil {
		return nil
	}
	return append([]Result(nil), b.results...)
}

// Rollback deletes every file of the batch from the media host. Handlers call
// it when persisting the owning record fails.
func (b *Batch) Rollback(ctx context.Context) error {
	if b == nil {
		return nil
	}

	var errs []error
	for _, r := range b.results {
		if !r.OK() {
			continue
		}
		if err := b.host.DeleteImage(ctx, r.URL); err != nil {
			b.log.Warn("failed to delete orphaned upload", zap.String("url", r.URL), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Uploader is what request handlers depend on.
type Uploader interface {
	Check(files Files, slots []Slot) error
	Commit(ctx context.Context, files Files, slots []Slot) (*Batch, error)
	Discard(ctx context.Context, urls ...string) error
}

// Observer is told the outcome of every host upload.
type Observer interface {
	ObserveUpload(ok bool)
}

// Stager is the disk-staging Uploader.
type Stager struct {
	host     storage.ImageStorage
	dir      string
	maxSize  int64
	log      *zap.Logger
	observer Observer
}

func NewStager(host storage.ImageStorage, dir string, log *zap.Logger) (*Stager, error) {
	if host == nil {
		return nil, errors.New("media host is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{host: host, dir: dir, maxSize: MaxFileSize, log: log}, nil
}

func (s *Stager) SetObserver(o Observer) {
	s.observer = o
}

// Check validates presence, type and size of every slot. It has no side
// effects and runs before anything is staged.
func (s *Stager) Check(files Files, slots []Slot) error {
	for _, slot := range slots {
		header := files.first(slot.Field)
		if header == nil {
			if slot.Required {
				return apperror.Validation(fmt.Sprintf("%s is required.", slot.Label))
			}
			continue
		}

		if header.Size > s.maxSize {
			return apperror.Validation(fmt.Sprintf("%s cannot exceed 5 MB.", slot.Label))
		}

		if err := checkType(header); err != nil {
			return apperror.Validation(fmt.Sprintf("Only .jpeg, .jpg, and .png files are allowed for %s.", strings.ToLower(slot.Label)))
		}
	}
	return nil
}

// Commit stages and uploads the present slots one after another. The first
// failure rolls back what was already uploaded and fails the whole batch.
func (s *Stager) Commit(ctx context.Context, files Files, slots []Slot) (*Batch, error) {
	if err := s.Check(files, slots); err != nil {
		return nil, err
	}

	batch := &Batch{host: s.host, log: s.log}
	for _, slot := range slots {
		header := files.first(slot.Field)
		if header == nil {
			continue
		}

		result := s.upload(ctx, slot, header)
		batch.results = append(batch.results, result)
		if s.observer != nil {
			s.observer.ObserveUpload(result.OK())
		}

		if !result.OK() {
			if err := batch.Rollback(ctx); err != nil {
				s.log.Warn("rollback after failed upload incomplete", zap.Error(err))
			}
			return nil, apperror.New(
				http.StatusInternalServerError,
				fmt.Sprintf("Failed to upload %s.", strings.ToLower(slot.Label)),
				fmt.Errorf("%w: %s: %v", apperror.ErrUpload, slot.Field, result.Err),
			)
		}
	}

	return batch, nil
}

// Discard deletes hosted images a record no longer references. Failures are
// logged and returned; the caller's write has already happened.
func (s *Stager) Discard(ctx context.Context, urls ...string) error {
	var errs []error
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.host.DeleteImage(ctx, url); err != nil {
			s.log.Warn("failed to delete replaced image", zap.String("url", url), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Stager) upload(ctx context.Context, slot Slot, header *multipart.FileHeader) Result {
	result := Result{Field: slot.Field}

	stagedPath, err := s.stage(header)
	if stagedPath != "" {
		defer func() {
			if rmErr := os.Remove(stagedPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				s.log.Warn("failed to remove staged file", zap.String("path", stagedPath), zap.Error(rmErr))
			}
		}()
	}
	if err != nil {
		result.Err = err
		return result
	}

	f, err := os.Open(stagedPath)
	if err != nil {
		result.Err = err
		return result
	}
	defer f.Close()

	url, err := s.host.UploadImage(ctx, f, filepath.Base(stagedPath))
	if err != nil {
		result.Err = err
		return result
	}
	if url == "" {
		result.Err = errors.New("media host returned an empty url")
		return result
	}

	result.URL = url
	return result
}

// stage copies the upload to <dir>/<base>-<ulid><ext>. The returned path is
// set whenever a file was created, even on error.
func (s *Stager) stage(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if base == "" || base == "." {
		base = "image"
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s%s", base, ulid.Make().String(), ext))

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1)); err != nil {
		dst.Close()
		return path, fmt.Errorf("write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return path, fmt.Errorf("close staged file: %w", err)
	}

	return path, nil
}

// checkType requires both the declared content type and the sniffed content
// to be an allowed image type.
func checkType(header *multipart.FileHeader) error {
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(header.Header.Get("Content-Type"), ";", 2)[0]))
	if _, ok := allowedTypes[declared]; !ok {
		return fmt.Errorf("content type %q not allowed", declared)
	}

	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return err
	}
	if _, ok := allowedTypes[detected.String()]; !ok {
		return fmt.Errorf("content %q not allowed", detected.String())
	}
	return nil
}
