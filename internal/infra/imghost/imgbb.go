// Package imghost uploads normalized images to an ImgBB compatible host and
// returns their public URL.
package imghost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/media"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
)

const DefaultEndpoint = "https://api.imgbb.com/1/upload"

// ErrUploadFailed is returned when the host rejects an upload without detail.
var ErrUploadFailed = errors.New("image upload failed")

// Config holds image host settings.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Uploader posts images to the host.
type Uploader struct {
	cfg        Config
	httpClient *http.Client
}

// NewUploader creates an Uploader.
func NewUploader(cfg Config) *Uploader {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Uploader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends a base64 image (data URI prefix allowed) and returns its URL.
func (u *Uploader) Upload(ctx context.Context, image string) (string, error) {
	payload := media.StripDataURI(image)
	if payload == "" {
		return "", fmt.Errorf("%w: empty image", ErrUploadFailed)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("image", payload); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	endpoint := u.cfg.Endpoint
	if u.cfg.APIKey != "" {
		endpoint += "?key=" + url.QueryEscape(u.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("read response: %w", err)
	}

	var out uploadResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		if out.Error.Message != "" {
			return "", fmt.Errorf("%w: http %d: %s", ErrUploadFailed, resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("%w: http %d", ErrUploadFailed, resp.StatusCode)
	}

	if out.Data.URL == "" {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: response has no url", ErrUploadFailed)
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()
	return out.Data.URL, nil
}
