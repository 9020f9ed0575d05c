// Package genai is a REST client for the Gemini generateContent endpoint.
//
// The client performs exactly one HTTP round trip per Generate call. Retry
// policy is left to the caller (see core/retry); failures surface as
// *APIError so the status code can drive classification.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/retry"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// Config holds generative service settings.
type Config struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	TextModel         string        `yaml:"text_model"`
	ImageModel        string        `yaml:"image_model"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"` // 0 = unlimited
	Retry             retry.Config  `yaml:"retry"`
}

// HealthStatus summarizes recent call outcomes.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	Throttled     int           `json:"throttled"`
}

// Client calls the generative service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// NewClient creates a client. The API key is mandatory.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
	}, nil
}

// TextModel returns the configured text/vision model.
func (c *Client) TextModel() string { return c.cfg.TextModel }

// ImageModel returns the configured image generation model.
func (c *Client) ImageModel() string { return c.cfg.ImageModel }

type wireRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema         `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
	ImageConfig      *imageConfig    `json:"imageConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type wireError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func buildWireRequest(req Request) wireRequest {
	wr := wireRequest{
		Contents: []Content{{Role: "user", Parts: req.Parts}},
	}
	if req.SystemInstruction != "" {
		wr.SystemInstruction = &Content{Parts: []Part{TextPart(req.SystemInstruction)}}
	}

	gc := &generationConfig{
		MaxOutputTokens:  req.MaxOutputTokens,
		ResponseMIMEType: req.ResponseMIMEType,
		ResponseSchema:   req.ResponseSchema,
	}
	if req.ThinkingBudget > 0 {
		gc.ThinkingConfig = &thinkingConfig{ThinkingBudget: req.ThinkingBudget}
	}
	if req.AspectRatio != "" {
		gc.ImageConfig = &imageConfig{AspectRatio: req.AspectRatio}
	}
	if *gc != (generationConfig{}) {
		wr.GenerationConfig = gc
	}
	return wr
}

// Generate performs a single generateContent call.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.TextModel
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("genai: rate limiter: %w", err)
	}

	start := time.Now()
	metrics.GenAICallsTotal.WithLabelValues(model).Inc()

	resp, err := c.do(ctx, model, req)
	metrics.GenAILatency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		c.recordFailure()
		metrics.GenAIErrorsTotal.WithLabelValues(model, retry.ClassifyError(err).String()).Inc()
		return nil, err
	}

	c.recordSuccess(time.Since(start))
	return resp, nil
}

func (c *Client) do(ctx context.Context, model string, req Request) (*Response, error) {
	jsonData, err := json.Marshal(buildWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("genai: marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") +
		"/v1beta/models/" + url.PathEscape(model) + ":generateContent"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("genai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("genai: call %s: %w", model, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("genai: read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		if httpResp.StatusCode == http.StatusTooManyRequests {
			c.recordThrottle()
		}
		return nil, parseAPIError(httpResp.StatusCode, body)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("genai: parse response: %w", err)
	}

	if out.Feedback != nil && out.Feedback.BlockReason != "" && len(out.Candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, out.Feedback.BlockReason)
	}

	return &out, nil
}

func parseAPIError(code int, body []byte) error {
	apiErr := &APIError{Code: code}

	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && we.Error.Message != "" {
		apiErr.Message = we.Error.Message
		apiErr.Status = we.Error.Status
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(code)
	}
	return apiErr
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// GetHealth returns the client's health status.
func (c *Client) GetHealth() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) recordSuccess(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successCount++
	c.requestCount++
	c.totalLatency += latency
	c.health.LastSuccessAt = time.Now()
	c.health.Available = true

	c.health.ErrorRate = float64(c.failureCount) / float64(c.requestCount)
	c.health.Latency = c.totalLatency / time.Duration(c.successCount)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount++
	c.requestCount++
	c.health.LastFailureAt = time.Now()
	c.health.ErrorRate = float64(c.failureCount) / float64(c.requestCount)

	if c.requestCount >= 4 && c.health.ErrorRate > 0.5 {
		c.health.Available = false
	}
}

func (c *Client) recordThrottle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health.Throttled++
}
