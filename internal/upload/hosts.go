package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/slmn-lf/east-stress-store/internal/config"
	"github.com/slmn-lf/east-stress-store/internal/models"
)

// NewHost builds the image host selected by cfg.Provider, wrapped in a
// circuit breaker.
func NewHost(cfg config.UploadConfig) (ImageHost, error) {
	var host ImageHost
	switch cfg.Provider {
	case "cloudinary":
		c, err := NewCloudinary(cfg.CloudName, cfg.APIKey, cfg.APISecret)
		if err != nil {
			return nil, err
		}
		host = c
	case "memory", "":
		host = NewMemoryHost(cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown upload provider %q", cfg.Provider)
	}
	return NewBreaker(host), nil
}

// Cloudinary uploads to a Cloudinary media library.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Name() string { return "cloudinary" }

func (c *Cloudinary) Upload(ctx context.Context, img Image) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(img.Data), uploader.UploadParams{
		Folder:       img.Folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary: empty secure url")
	}
	return resp.SecureURL, nil
}

// MemoryHost keeps uploads in process and serves them over HTTP. It backs
// development runs and tests.
type MemoryHost struct {
	baseURL string

	mu     sync.RWMutex
	images map[string]Image
}

func NewMemoryHost(baseURL string) *MemoryHost {
	return &MemoryHost{
		baseURL: strings.TrimRight(baseURL, "/"),
		images:  make(map[string]Image),
	}
}

func (m *MemoryHost) Name() string { return "memory" }

func (m *MemoryHost) Upload(_ context.Context, img Image) (string, error) {
	key := models.NewID("img") + path.Ext(img.Filename)
	if img.Folder != "" {
		key = strings.Trim(img.Folder, "/") + "/" + key
	}
	m.mu.Lock()
	m.images[key] = img
	m.mu.Unlock()
	return m.baseURL + "/uploads/" + key, nil
}

// Len reports how many images are stored.
func (m *MemoryHost) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

// ServeHTTP serves stored images under /uploads/.
func (m *MemoryHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/uploads/")
	m.mu.RLock()
	img, ok := m.images[key]
	m.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(img.Data)
}
