package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultProxyURL re-encodes remote images as JPEG and sidesteps CORS-hostile
// boutique hosts.
const DefaultProxyURL = "https://images.weserv.nl/"

// maxFetchBytes bounds a downloaded garment image.
const maxFetchBytes = 20 << 20

// Fetcher downloads remote images as base64 payloads.
type Fetcher struct {
	proxyURL   string
	httpClient *http.Client
}

// NewFetcher creates a Fetcher. An empty proxyURL fetches images directly.
func NewFetcher(proxyURL string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		proxyURL:   proxyURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchBase64 downloads imageURL and returns its base64 payload.
func (f *Fetcher) FetchBase64(ctx context.Context, imageURL string) (string, error) {
	target := f.resolve(imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("fetch image: empty body")
	}

	return base64.StdEncoding.EncodeToString(body), nil
}

func (f *Fetcher) resolve(imageURL string) string {
	if f.proxyURL == "" {
		return imageURL
	}
	sep := "?"
	if strings.Contains(f.proxyURL, "?") {
		sep = "&"
	}
	return f.proxyURL + sep + "url=" + url.QueryEscape(imageURL) + "&output=jpg&q=85"
}

// IsRemote reports whether s is an http(s) URL rather than image data.
func IsRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
