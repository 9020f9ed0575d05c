package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/media"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/styling/stylist"
)

var (
	maxWidth  int
	maxHeight int
	quality   int

	userImage    string
	garmentImage string
	outPath      string
	saveLook     bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [input] [output]",
	Short: "Downscale an image to JPEG within the given bounds",
	Args:  cobra.ExactArgs(2),
	Run:   runNormalize,
}

var tryOnCmd = &cobra.Command{
	Use:   "tryon",
	Short: "Render a virtual try-on of a garment on a portrait",
	Run:   runTryOn,
}

func init() {
	normalizeCmd.Flags().IntVar(&maxWidth, "width", media.DefaultMaxWidth, "maximum width")
	normalizeCmd.Flags().IntVar(&maxHeight, "height", media.DefaultMaxHeight, "maximum height")
	normalizeCmd.Flags().IntVar(&quality, "quality", media.DefaultQuality, "JPEG quality (1-100)")

	tryOnCmd.Flags().StringVar(&userImage, "user", "", "portrait image file")
	tryOnCmd.Flags().StringVar(&garmentImage, "garment", "", "garment image file or URL")
	tryOnCmd.Flags().StringVar(&outPath, "out", "tryon.jpg", "output file")
	tryOnCmd.Flags().BoolVar(&saveLook, "save", false, "save the result to the closet")
	_ = tryOnCmd.MarkFlagRequired("user")
	_ = tryOnCmd.MarkFlagRequired("garment")

	rootCmd.AddCommand(normalizeCmd, tryOnCmd)
}

func runNormalize(cmd *cobra.Command, args []string) {
	loadConfig(cmd)

	in, err := readImage(args[0])
	if err != nil {
		fail("Failed to read input", err)
	}

	out := media.NormalizeWith(in, media.Options{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality})
	if err := writeImage(args[1], out); err != nil {
		fail("Failed to write output", err)
	}

	if w, h, err := media.Dimensions(out); err == nil {
		fmt.Printf("%s: %dx%d\n", args[1], w, h)
	} else {
		// Undecodable input is passed through unchanged
		slog.Warn("Output is not a decodable image", "error", err)
	}
}

func runTryOn(cmd *cobra.Command, args []string) {
	app, stop := newApp(cmd)
	defer stop()

	svc, err := app.Stylist()
	if err != nil {
		fail("Stylist unavailable", err)
	}

	user, err := readImage(userImage)
	if err != nil {
		fail("Failed to read portrait", err)
	}
	garment, err := readImage(garmentImage)
	if err != nil {
		fail("Failed to read garment", err)
	}

	result, err := svc.VirtualTryOn(cmd.Context(), user, garment)
	if err != nil {
		fail("Virtual try-on failed", err)
	}
	if err := writeImage(outPath, result); err != nil {
		fail("Failed to write result", err)
	}
	slog.Info("Try-on written", "path", outPath, "bound", stylist.BoundComposite)

	if saveLook {
		look, err := app.Closet.Save(cmd.Context(), domain.LookDraft{
			Image:  result,
			Folder: domain.FolderTryOns,
		})
		if err != nil {
			fail("Failed to save look", err)
		}
		_ = printJSON(os.Stdout, look)
	}
}
