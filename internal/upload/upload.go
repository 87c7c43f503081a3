// Package upload stores product images with an external image host after
// shrinking them to storefront size.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/slmn-lf/east-stress-store/internal/config"
	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/metrics"
)

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrNotImage = errors.New("file must be an image")
	ErrTooLarge = errors.New("file is too large")
	// ErrHost wraps failures of the image host.
	ErrHost = errors.New("image host failed")
)

// Image is a file ready to be sent to an ImageHost.
type Image struct {
	Filename    string
	ContentType string
	Folder      string
	Data        []byte
}

// ImageHost stores an image and returns its public https URL.
type ImageHost interface {
	Name() string
	Upload(ctx context.Context, img Image) (string, error)
}

// Result describes a stored image.
type Result struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
	Compressed  bool   `json:"compressed"`
}

type Service struct {
	host         ImageHost
	folder       string
	maxBytes     int64
	maxDimension int
	quality      int
}

func NewService(host ImageHost, cfg config.UploadConfig) *Service {
	return &Service{
		host:         host,
		folder:       cfg.Folder,
		maxBytes:     cfg.MaxBytes,
		maxDimension: cfg.MaxDimension,
		quality:      cfg.JPEGQuality,
	}
}

// MaxBytes is the largest accepted upload.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload validates, compresses and stores one image. contentType may be
// empty, in which case it is sniffed from the data.
func (s *Service) Upload(ctx context.Context, filename, contentType string, body io.Reader) (Result, error) {
	if body == nil {
		metrics.RecordUpload("rejected")
		return Result{}, ErrNoFile
	}
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		metrics.RecordUpload("rejected")
		return Result{}, ErrNoFile
	}
	if int64(len(data)) > s.maxBytes {
		metrics.RecordUpload("rejected")
		return Result{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		metrics.RecordUpload("rejected")
		return Result{}, ErrNotImage
	}

	img := Image{Filename: cleanName(filename), ContentType: contentType, Folder: s.folder, Data: data}
	compressed := false
	if Compressible(contentType) {
		out, err := Compress(data, s.maxDimension, s.quality)
		if err != nil {
			metrics.RecordUpload("rejected")
			return Result{}, fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		if out.Resized || len(out.Data) < len(data) {
			img.Data = out.Data
			img.ContentType = "image/jpeg"
			img.Filename = strings.TrimSuffix(img.Filename, path.Ext(img.Filename)) + ".jpg"
			compressed = true
		}
	}

	url, err := s.host.Upload(ctx, img)
	if err != nil {
		metrics.RecordUpload("failed")
		logging.Ctx(ctx).Error().Err(err).Str("host", s.host.Name()).Msg("image upload failed")
		return Result{}, fmt.Errorf("%w: %v", ErrHost, err)
	}
	metrics.RecordUpload("ok")
	logging.Ctx(ctx).Info().
		Str("host", s.host.Name()).
		Int("bytes", len(img.Data)).
		Bool("compressed", compressed).
		Msg("image uploaded")
	return Result{URL: url, ContentType: img.ContentType, Bytes: len(img.Data), Compressed: compressed}, nil
}

func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}
