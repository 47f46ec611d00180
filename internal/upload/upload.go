// Package upload is the admin media upload form: it checks a file's
// sniffed content type and size before any request, then posts it with
// transfer progress.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

const (
	MaxImageBytes = 5 * 1024 * 1024
	MaxVideoBytes = 50 * 1024 * 1024
)

type Kind int

const (
	Image Kind = iota
	Video
)

type rule struct {
	prefix   string
	max      int64
	badType  string
	tooLarge string
	failed   string
}

var rules = map[Kind]rule{
	Image: {"image/", MaxImageBytes, "Please select an image file (JPG, PNG, WebP, GIF)", "Image must be less than 5MB", "Failed to upload image"},
	Video: {"video/", MaxVideoBytes, "Please select a video file (MP4, WebM)", "Video must be less than 50MB", "Failed to upload video"},
}

func (k Kind) String() string {
	if k == Video {
		return "video"
	}
	return "image"
}

// RejectError is a file refused before upload.
type RejectError struct {
	Kind    Kind
	Message string
}

func (e *RejectError) Error() string { return e.Message }

// File is a candidate upload. ContentType comes from the file's bytes,
// never from its name.
type File struct {
	Name        string
	Size        int64
	ContentType string
	open        func() (io.ReadCloser, error)
}

// FromPath stats and sniffs a file on disk.
func FromPath(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if fi.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        filepath.Base(path),
		Size:        fi.Size(),
		ContentType: baseType(m),
		open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func FromBytes(name string, b []byte) File {
	return File{
		Name:        name,
		Size:        int64(len(b)),
		ContentType: baseType(mimetype.Detect(b)),
		open:        func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil },
	}
}

// baseType drops parameters such as "; charset=utf-8".
func baseType(m *mimetype.MIME) string {
	t, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(t)
}

// Check applies the kind's type prefix and size cap.
func (k Kind) Check(f File) error {
	r := rules[k]
	if !strings.HasPrefix(f.ContentType, r.prefix) {
		return &RejectError{Kind: k, Message: r.badType}
	}
	if f.Size > r.max {
		return &RejectError{Kind: k, Message: r.tooLarge}
	}
	return nil
}

type Uploader interface {
	UploadImage(ctx context.Context, productID int64, in services.MediaUpload) (domain.ProductMedia, error)
	UploadVideo(ctx context.Context, productID int64, in services.MediaUpload) (domain.ProductMedia, error)
}

type State struct {
	File      *File
	Uploading bool
	Progress  int // percent
	Err       string
	Last      *domain.ProductMedia
}

// Form holds one selected file for one product's gallery.
type Form struct {
	kind      Kind
	productID int64
	up        Uploader

	mu         sync.Mutex
	state      State
	onProgress func(int)
}

func NewImageForm(up Uploader, productID int64) *Form {
	return &Form{kind: Image, productID: productID, up: up}
}

func NewVideoForm(up Uploader, productID int64) *Form {
	return &Form{kind: Video, productID: productID, up: up}
}

func (f *Form) Kind() Kind { return f.kind }

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// OnProgress registers fn to receive every progress change.
func (f *Form) OnProgress(fn func(percent int)) {
	f.mu.Lock()
	f.onProgress = fn
	f.mu.Unlock()
}

func (f *Form) setProgress(p int) {
	f.mu.Lock()
	if p == f.state.Progress {
		f.mu.Unlock()
		return
	}
	f.state.Progress = p
	fn := f.onProgress
	f.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// Select validates file and makes it the current selection. A rejected
// file leaves the previous selection in place.
func (f *Form) Select(file File) error {
	err := f.kind.Check(file)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state.Err = err.Error()
		return err
	}
	f.state.File = &file
	f.state.Err = ""
	return nil
}

func (f *Form) Clear() {
	f.mu.Lock()
	f.state = State{}
	f.mu.Unlock()
}

// Upload sends the selected file. Without a selection it does nothing.
// Progress follows bytes handed to the transport and stays below 100
// until the backend has answered.
func (f *Form) Upload(ctx context.Context, altText string, displayOrder *int) (*domain.ProductMedia, error) {
	f.mu.Lock()
	if f.state.File == nil || f.state.Uploading {
		f.mu.Unlock()
		return nil, nil
	}
	file := *f.state.File
	f.state.Uploading = true
	f.state.Err = ""
	f.mu.Unlock()
	f.setProgress(0)

	m, err := f.send(ctx, file, altText, displayOrder)
	if err != nil {
		applog.Error(nil, "media.upload."+f.kind.String(), err, map[string]any{"product_id": f.productID, "file": file.Name})
		f.mu.Lock()
		f.state.Uploading = false
		f.state.Err = api.Message(err, rules[f.kind].failed)
		f.mu.Unlock()
		f.setProgress(0)
		return nil, err
	}

	f.setProgress(100)
	f.mu.Lock()
	f.state.Uploading = false
	f.state.File = nil
	f.state.Last = &m
	f.mu.Unlock()
	applog.Audit(nil, "media.upload."+f.kind.String(), map[string]any{"product_id": f.productID, "media_id": m.ID})
	return &m, nil
}

func (f *Form) send(ctx context.Context, file File, altText string, displayOrder *int) (domain.ProductMedia, error) {
	if file.open == nil {
		return domain.ProductMedia{}, fmt.Errorf("upload: %s has no content", file.Name)
	}
	rc, err := file.open()
	if err != nil {
		return domain.ProductMedia{}, err
	}
	defer rc.Close()

	in := services.MediaUpload{
		File:         api.FilePart{Field: "file", FileName: file.Name, ContentType: file.ContentType, Body: rc},
		AltText:      altText,
		DisplayOrder: displayOrder,
		Progress: func(sent, total int64) {
			if total <= 0 {
				return
			}
			p := int(sent * 100 / total)
			if p > 99 {
				p = 99
			}
			f.setProgress(p)
		},
	}
	if f.kind == Video {
		return f.up.UploadVideo(ctx, f.productID, in)
	}
	return f.up.UploadImage(ctx, f.productID, in)
}
