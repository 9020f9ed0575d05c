package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T, w, h int, fill color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeJPEG(t *testing.T, b64 string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err, "output must be JPEG")
	return img
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize("", 1024, 1024))
	assert.Equal(t, "", Normalize("   ", 1024, 1024))
}

func TestNormalize_DownscalesPreservingAspect(t *testing.T) {
	src := pngBase64(t, 2000, 1000, color.NRGBA{R: 200, G: 10, B: 10, A: 255})

	out := Normalize(src, 1024, 1024)
	img := decodeJPEG(t, out)

	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestNormalize_NeverUpscales(t *testing.T) {
	src := pngBase64(t, 300, 200, color.NRGBA{G: 255, A: 255})

	img := decodeJPEG(t, Normalize(src, 1024, 1024))

	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestNormalize_StripsDataURIPrefix(t *testing.T) {
	src := "data:image/png;base64," + pngBase64(t, 64, 64, color.NRGBA{B: 255, A: 255})

	out := Normalize(src, 32, 32)

	assert.False(t, strings.HasPrefix(out, "data:"))
	img := decodeJPEG(t, out)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestNormalize_FlattensTransparencyToWhite(t *testing.T) {
	src := pngBase64(t, 16, 16, color.NRGBA{})

	img := decodeJPEG(t, Normalize(src, 1024, 1024))

	r, g, b, _ := img.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(245))
	assert.Greater(t, g>>8, uint32(245))
	assert.Greater(t, b>>8, uint32(245))
}

func TestNormalize_IdempotentOnNormalizedInput(t *testing.T) {
	src := pngBase64(t, 1600, 900, color.NRGBA{R: 90, G: 90, B: 90, A: 255})

	once := Normalize(src, 800, 800)
	twice := Normalize(once, 800, 800)

	w1, h1, err := Dimensions(once)
	require.NoError(t, err)
	w2, h2, err := Dimensions(twice)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)
	assert.Equal(t, h1, h2)
}

func TestNormalize_CorruptInputPassesThrough(t *testing.T) {
	garbage := base64.StdEncoding.EncodeToString([]byte("definitely not an image"))

	assert.Equal(t, garbage, Normalize(garbage, 512, 512))
	assert.Equal(t, garbage, Normalize("data:image/png;base64,"+garbage, 512, 512))
	assert.Equal(t, "%%%not-base64", Normalize("%%%not-base64", 512, 512))
}

// forgedPNG returns a 1x1 PNG whose IHDR claims w x h.
func forgedPNG(t *testing.T, w, h uint32) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(pngBase64(t, 1, 1, color.White))
	require.NoError(t, err)

	// signature(8) | length(4) | "IHDR"(4) | width(4) | height(4) ... | crc(4)
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return base64.StdEncoding.EncodeToString(raw)
}

func TestNormalize_OversizedHeaderPassesThrough(t *testing.T) {
	forged := forgedPNG(t, 8000, 8000)

	w, h, err := Dimensions(forged)
	require.NoError(t, err)
	require.Equal(t, 8000, w)
	require.Equal(t, 8000, h)

	assert.Equal(t, forged, Normalize(forged, 512, 512))
}

func TestNormalizeWith_MaxPixels(t *testing.T) {
	src := pngBase64(t, 20, 20, color.Black)

	assert.Equal(t, src, NormalizeWith(src, Options{MaxPixels: 399}))
	assert.NotEqual(t, src, NormalizeWith(src, Options{MaxPixels: 400}))
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{4000, 3000, 1024, 1024, 1024, 768},
		{3000, 4000, 1024, 1024, 768, 1024},
		{1024, 1024, 1024, 1024, 1024, 1024},
		{500, 500, 1024, 1024, 500, 500},
		{1000, 3, 100, 100, 100, 1},
		{768, 1024, 512, 512, 384, 512},
	}
	for _, tt := range tests {
		w, h := FitSize(tt.w, tt.h, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
		assert.LessOrEqual(t, w, tt.maxW)
		assert.LessOrEqual(t, h, tt.maxH)
	}
}

func TestFitSize_AspectRatioWithinRounding(t *testing.T) {
	for _, dims := range [][2]int{{1920, 1080}, {1234, 567}, {333, 1999}, {5000, 4999}} {
		w, h := FitSize(dims[0], dims[1], 1024, 1024)
		want := float64(dims[0]) / float64(dims[1])
		// One pixel of floor on either side.
		lo := float64(w) / float64(h+1)
		hi := float64(w+1) / float64(h)
		assert.True(t, want >= lo && want <= hi, "ratio %.4f outside rounding of %dx%d", want, w, h)
	}
}

func TestStripDataURI(t *testing.T) {
	assert.Equal(t, "abc", StripDataURI("data:image/jpeg;base64,abc"))
	assert.Equal(t, "abc", StripDataURI("abc"))
	assert.Equal(t, "data:broken", StripDataURI("data:broken"))
}

func TestFetcher_FetchBase64ViaProxy(t *testing.T) {
	payload := []byte("jpeg-bytes")
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("url")
		if r.URL.Query().Get("output") != "jpg" {
			t.Errorf("expected output=jpg, got %q", r.URL.Query().Get("output"))
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	f := NewFetcher(server.URL+"/", 5*time.Second)
	got, err := f.FetchBase64(context.Background(), "https://shop.example.com/dress.png?v=2")

	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), got)
	assert.Equal(t, "https://shop.example.com/dress.png?v=2", gotQuery)
}

func TestFetcher_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher("", time.Second)
	_, err := f.FetchBase64(context.Background(), server.URL+"/missing.jpg")
	assert.Error(t, err)
}
