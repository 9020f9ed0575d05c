// Package media converts arbitrary uploaded images into the bounded, JPEG
// encoded base64 payloads accepted by the generative service and the image
// host.
//
// Normalization never fails: undecodable input degrades to passing the
// original payload through.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"log/slog"
	"math"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/metrics"
)

const (
	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 1024
	DefaultQuality   = 85
	// DefaultMaxPixels bounds the source area decoded into memory.
	DefaultMaxPixels = 50_000_000
)

// ErrTooLarge reports a source image whose declared area exceeds MaxPixels.
var ErrTooLarge = errors.New("image too large")

// Options controls a normalization.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	MaxPixels int // source width*height above this passes through undecoded
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Normalize returns input as base64 JPEG (no data URI prefix) scaled down to
// fit maxWidth x maxHeight. Empty input yields "".
func Normalize(input string, maxWidth, maxHeight int) string {
	return NormalizeWith(input, Options{MaxWidth: maxWidth, MaxHeight: maxHeight})
}

// NormalizeWith is Normalize with explicit options.
func NormalizeWith(input string, opts Options) string {
	opts = opts.withDefaults()

	if strings.TrimSpace(input) == "" {
		metrics.MediaNormalizeTotal.WithLabelValues("empty").Inc()
		return ""
	}

	payload := StripDataURI(input)

	raw, err := decodeBase64(payload)
	if err != nil {
		return passthrough(opts.Logger, payload, err)
	}

	// Decoders allocate the full canvas from the header before reading pixels.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return passthrough(opts.Logger, payload, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(opts.MaxPixels) {
		return passthrough(opts.Logger, payload,
			fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, opts.MaxPixels))
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return passthrough(opts.Logger, payload, err)
	}

	out, err := encodeJPEG(Fit(src, opts.MaxWidth, opts.MaxHeight), opts.Quality)
	if err != nil {
		return passthrough(opts.Logger, payload, err)
	}

	metrics.MediaNormalizeTotal.WithLabelValues("normalized").Inc()
	return base64.StdEncoding.EncodeToString(out)
}

// FitSize returns the largest dimensions with the aspect ratio of w x h that
// fit inside maxWidth x maxHeight. Images are never upscaled.
func FitSize(w, h, maxWidth, maxHeight int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	ratio := math.Min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	ratio = math.Min(ratio, 1)

	nw := int(math.Floor(float64(w)*ratio + 1e-9))
	nh := int(math.Floor(float64(h)*ratio + 1e-9))
	return max(nw, 1), max(nh, 1)
}

// Fit renders src onto an opaque white canvas of the fitted size.
func Fit(src image.Image, maxWidth, maxHeight int) *image.RGBA {
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// StripDataURI removes a "data:<mime>;base64," prefix if present.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// DataURI prefixes a base64 payload with its media type.
func DataURI(mimeType, payload string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + payload
}

// Dimensions decodes only the header of a base64 image.
func Dimensions(input string) (int, int, error) {
	raw, err := decodeBase64(StripDataURI(input))
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func decodeBase64(payload string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)

	raw, err := base64.StdEncoding.DecodeString(clean)
	if err == nil {
		return raw, nil
	}
	// Tolerate unpadded payloads.
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func passthrough(log *slog.Logger, payload string, err error) string {
	log.Warn("Image normalization failed, passing original through", "error", err)
	metrics.MediaNormalizeTotal.WithLabelValues("passthrough").Inc()
	return payload
}
