package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/media"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readImage loads a file as base64. URLs and data URIs pass through.
func readImage(arg string) (string, error) {
	if media.IsRemote(arg) || strings.HasPrefix(arg, "data:") {
		return arg, nil
	}
	raw, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// writeImage decodes a base64 payload or data URI into path.
func writeImage(path, image string) error {
	raw, err := base64.StdEncoding.DecodeString(media.StripDataURI(image))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
