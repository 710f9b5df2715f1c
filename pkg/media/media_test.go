package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"testing"

	"anoa.com/welfaredesk/pkg/apperror"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type fakeHost struct {
	mu       sync.Mutex
	failOn   string
	uploaded []string
	deleted  []string
}

func (h *fakeHost) UploadImage(ctx context.Context, r io.Reader, fileName string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if h.failOn != "" && strings.HasPrefix(fileName, h.failOn) {
		return "", errors.New("host unavailable")
	}
	url := fmt.Sprintf("https://cdn.test/%d/%s", len(h.uploaded), fileName)
	h.uploaded = append(h.uploaded, url)
	return url, nil
}

func (h *fakeHost) DeleteImage(ctx context.Context, fileURL string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, fileURL)
	return nil
}

type part struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

func buildFiles(t *testing.T, parts ...part) Files {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		if _, err := pw.Write(p.body); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	return FromForm(req.MultipartForm)
}

var beneficiarySlots = []Slot{
	{Field: "image", Label: "Profile image", Required: true},
	{Field: "cnicImage.front", Label: "CNIC front image", Required: true},
	{Field: "cnicImage.back", Label: "CNIC back image", Required: true},
}

func newStager(t *testing.T, host *fakeHost) (*Stager, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStager(host, dir, nil)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	return s, dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staging dir to be empty, found %d entries", len(entries))
	}
}

func TestCommitUploadsAllSlotsAndCleansStaging(t *testing.T) {
	host := &fakeHost{}
	s, dir := newStager(t, host)

	files := buildFiles(t,
		part{"image", "me.png", "image/png", pngBytes},
		part{"cnicImage.front", "front.png", "image/png", pngBytes},
		part{"cnicImage.back", "back.png", "image/png", pngBytes},
	)

	batch, err := s.Commit(context.Background(), files, beneficiarySlots)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for _, slot := range beneficiarySlots {
		url, ok := batch.URL(slot.Field)
		if !ok || !strings.HasPrefix(url, "https://cdn.test/") {
			t.Fatalf("slot %s: expected hosted url, got %q", slot.Field, url)
		}
	}
	if len(host.uploaded) != 3 {
		t.Fatalf("expected 3 uploads, got %d", len(host.uploaded))
	}
	assertEmptyDir(t, dir)
}

func TestCheckRejectsMissingRequiredSlot(t *testing.T) {
	host := &fakeHost{}
	s, _ := newStager(t, host)

	files := buildFiles(t, part{"image", "me.png", "image/png", pngBytes})

	err := s.Check(files, beneficiarySlots)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperror.Message(err) != "CNIC front image is required." {
		t.Fatalf("unexpected message %q", apperror.Message(err))
	}

	if _, err := s.Commit(context.Background(), files, beneficiarySlots); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("commit must fail the same way, got %v", err)
	}
	if len(host.uploaded) != 0 {
		t.Fatalf("nothing may be uploaded when validation fails")
	}
}

func TestCheckRejectsDisallowedTypes(t *testing.T) {
	s, _ := newStager(t, &fakeHost{})
	slots := []Slot{{Field: "image", Label: "Profile image", Required: true}}

	declared := buildFiles(t, part{"image", "doc.pdf", "application/pdf", pngBytes})
	if err := s.Check(declared, slots); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for declared pdf, got %v", err)
	}

	spoofed := buildFiles(t, part{"image", "fake.png", "image/png", []byte("plain text, not an image")})
	if err := s.Check(spoofed, slots); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for spoofed content, got %v", err)
	}
}

func TestCheckRejectsOversizedFile(t *testing.T) {
	s, _ := newStager(t, &fakeHost{})
	s.maxSize = 16

	files := buildFiles(t, part{"image", "me.png", "image/png", pngBytes})
	err := s.Check(files, []Slot{{Field: "image", Label: "Profile image"}})
	if apperror.Message(err) != "Profile image cannot exceed 5 MB." {
		t.Fatalf("unexpected result %v", err)
	}
}

func TestCommitFailureRollsBackEarlierUploads(t *testing.T) {
	host := &fakeHost{failOn: "back"}
	s, dir := newStager(t, host)

	files := buildFiles(t,
		part{"image", "me.png", "image/png", pngBytes},
		part{"cnicImage.front", "front.png", "image/png", pngBytes},
		part{"cnicImage.back", "back.png", "image/png", pngBytes},
	)

	batch, err := s.Commit(context.Background(), files, beneficiarySlots)
	if batch != nil {
		t.Fatalf("expected no batch on failure")
	}
	if !errors.Is(err, apperror.ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if apperror.MapErrorToStatus(err) != http.StatusInternalServerError {
		t.Fatalf("upload failure maps to 500")
	}
	if len(host.deleted) != 2 {
		t.Fatalf("expected the two earlier uploads to be deleted, got %v", host.deleted)
	}
	assertEmptyDir(t, dir)
}

func TestCommitSkipsAbsentOptionalSlots(t *testing.T) {
	host := &fakeHost{}
	s, _ := newStager(t, host)
	optional := []Slot{
		{Field: "image", Label: "Profile image"},
		{Field: "cnicImage.front", Label: "CNIC front image"},
	}

	files := buildFiles(t, part{"cnicImage.front", "front.jpg", "image/png", pngBytes})
	batch, err := s.Commit(context.Background(), files, optional)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, ok := batch.URL("image"); ok {
		t.Fatalf("absent slot must not have a url")
	}
	if _, ok := batch.URL("cnicImage.front"); !ok {
		t.Fatalf("present slot must have a url")
	}
	if len(batch.Results()) != 1 {
		t.Fatalf("expected a single result, got %d", len(batch.Results()))
	}

	if err := batch.Rollback(context.Background()); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if len(host.deleted) != 1 {
		t.Fatalf("rollback should delete the uploaded file")
	}
}

func TestFilesHasAndNilForm(t *testing.T) {
	empty := FromForm(nil)
	if empty.Has(beneficiarySlots...) {
		t.Fatalf("nil form has no files")
	}
	files := buildFiles(t, part{"cnicImage.back", "b.png", "image/png", pngBytes})
	if !files.Has(beneficiarySlots...) {
		t.Fatalf("expected a file to be found")
	}
}

func TestResultOK(t *testing.T) {
	if (Result{Field: "image"}).OK() {
		t.Fatalf("empty url is not a success")
	}
	if (Result{Field: "image", URL: "u", Err: errors.New("x")}).OK() {
		t.Fatalf("error result is not a success")
	}
	if !(Result{Field: "image", URL: "u"}).OK() {
		t.Fatalf("expected success")
	}
}

type countingObserver struct{ ok, failed int }

func (o *countingObserver) ObserveUpload(ok bool) {
	if ok {
		o.ok++
		return
	}
	o.failed++
}

func TestCommitReportsOutcomesToObserver(t *testing.T) {
	host := &fakeHost{failOn: "back"}
	s, _ := newStager(t, host)
	obs := &countingObserver{}
	s.SetObserver(obs)

	files := buildFiles(t,
		part{"image", "me.png", "image/png", pngBytes},
		part{"cnicImage.front", "front.png", "image/png", pngBytes},
		part{"cnicImage.back", "back.png", "image/png", pngBytes},
	)
	if _, err := s.Commit(context.Background(), files, beneficiarySlots); err == nil {
		t.Fatalf("expected commit to fail")
	}
	if obs.ok != 2 || obs.failed != 1 {
		t.Fatalf("unexpected observations ok=%d failed=%d", obs.ok, obs.failed)
	}
}

func TestDiscardDeletesGivenURLs(t *testing.T) {
	host := &fakeHost{}
	s, _ := newStager(t, host)

	if err := s.Discard(context.Background(), "https://cdn.test/0/old.png", "", "https://cdn.test/1/older.png"); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if len(host.deleted) != 2 || host.deleted[0] != "https://cdn.test/0/old.png" || host.deleted[1] != "https://cdn.test/1/older.png" {
		t.Fatalf("unexpected deletions %v", host.deleted)
	}
	if err := s.Discard(context.Background()); err != nil {
		t.Fatalf("Discard with nothing: %v", err)
	}
}
