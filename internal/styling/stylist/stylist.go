// Package stylist implements the AI styling operations: virtual try-on,
// concierge chat, color analysis, refinement, suggestions, lookbooks,
// product shots and outfit selection.
//
// Every operation normalizes its images and issues its request inside a
// single retry.Do call, so transient service errors are retried with backoff
// and the final error reaches the caller unchanged.
package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/media"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/retry"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/genai"
)

// Normalization bounds per call site.
const (
	BoundComposite  = 1024 // try-on, refine, lookbook
	BoundSuggestion = 768
	BoundAnalysis   = 512 // chat, color analysis, outfit selection
)

const (
	aspectPortrait = "3:4"
	aspectSquare   = "1:1"
	jpegMIME       = "image/jpeg"
	emptyReply     = "..."
)

var (
	// ErrMissingImage is returned when a required input image is empty.
	ErrMissingImage = errors.New("stylist: image is required")
	// ErrInvalidSelection is returned when the model picks an outfit that was not offered.
	ErrInvalidSelection = errors.New("stylist: selected outfit out of range")
)

// Generator is the generative service used by the stylist.
type Generator interface {
	Generate(ctx context.Context, req genai.Request) (*genai.Response, error)
	TextModel() string
	ImageModel() string
}

// Service runs styling operations against a Generator.
type Service struct {
	gen     Generator
	fetcher *media.Fetcher
	retry   retry.Config
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher enables http(s) garment URLs.
func WithFetcher(f *media.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a stylist service.
func NewService(gen Generator, cfg retry.Config, opts ...Option) *Service {
	s := &Service{
		gen:    gen,
		retry:  cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retry.Logger == nil {
		s.retry.Logger = s.logger
	}
	return s
}

// VirtualTryOn dresses the subject of user in garment and returns a data URI.
// garment may be an http(s) URL when a fetcher is configured.
func (s *Service) VirtualTryOn(ctx context.Context, user, garment string) (string, error) {
	if user == "" || garment == "" {
		return "", ErrMissingImage
	}
	garment, err := s.resolve(ctx, garment)
	if err != nil {
		return "", err
	}

	return retry.Do(ctx, s.retry.WithName("virtual_try_on"), func(ctx context.Context) (string, error) {
		cleanUser := media.Normalize(user, BoundComposite, BoundComposite)
		cleanGarment := media.Normalize(garment, BoundComposite, BoundComposite)

		resp, err := s.gen.Generate(ctx, genai.Request{
			Model: s.gen.ImageModel(),
			Parts: []genai.Part{
				genai.ImagePart(jpegMIME, cleanUser),
				genai.ImagePart(jpegMIME, cleanGarment),
				genai.TextPart(tryOnPrompt),
			},
			AspectRatio:     aspectPortrait,
			MaxOutputTokens: 25000,
			ThinkingBudget:  15000,
		})
		if err != nil {
			return "", err
		}
		img, err := resp.Image()
		if err != nil {
			return "", retry.Terminal(fmt.Errorf("virtual try-on: %w", err))
		}
		return img.DataURI(), nil
	})
}

// Chat answers a styling question in one sentence. image is optional.
func (s *Service) Chat(ctx context.Context, message, image string) (string, error) {
	return retry.Do(ctx, s.retry.WithName("chat"), func(ctx context.Context) (string, error) {
		parts := []genai.Part{genai.TextPart(message)}
		if image != "" {
			parts = append(parts, genai.ImagePart(jpegMIME, media.Normalize(image, BoundAnalysis, BoundAnalysis)))
		}

		resp, err := s.gen.Generate(ctx, genai.Request{
			Model:             s.gen.TextModel(),
			Parts:             parts,
			SystemInstruction: chatInstruction,
			MaxOutputTokens:   100,
			ThinkingBudget:    50,
		})
		if err != nil {
			return "", err
		}
		if text := strings.TrimSpace(resp.Text()); text != "" {
			return text, nil
		}
		return emptyReply, nil
	})
}

// AnalyzeColor derives a seasonal palette from a portrait.
func (s *Service) AnalyzeColor(ctx context.Context, image string) (domain.ColorAnalysis, error) {
	if image == "" {
		return domain.ColorAnalysis{}, ErrMissingImage
	}
	return retry.Do(ctx, s.retry.WithName("analyze_color"), func(ctx context.Context) (domain.ColorAnalysis, error) {
		resp, err := s.gen.Generate(ctx, genai.Request{
			Model: s.gen.TextModel(),
			Parts: []genai.Part{
				genai.TextPart(colorPrompt),
				genai.ImagePart(jpegMIME, media.Normalize(image, BoundAnalysis, BoundAnalysis)),
			},
			ResponseMIMEType: "application/json",
			ResponseSchema:   colorSchema,
		})
		if err != nil {
			return domain.ColorAnalysis{}, err
		}
		return decodeJSON[domain.ColorAnalysis](resp.Text())
	})
}

// Refine polishes a try-on result. It returns "" when the service produces no image.
func (s *Service) Refine(ctx context.Context, image string, kind domain.RefineKind) (string, error) {
	if image == "" {
		return "", ErrMissingImage
	}
	return retry.Do(ctx, s.retry.WithName("refine"), func(ctx context.Context) (string, error) {
		resp, err := s.gen.Generate(ctx, genai.Request{
			Model: s.gen.ImageModel(),
			Parts: []genai.Part{
				genai.TextPart(refinePrompt(kind)),
				genai.ImagePart(jpegMIME, media.Normalize(image, BoundComposite, BoundComposite)),
			},
			AspectRatio: aspectPortrait,
		})
		if err != nil {
			return "", err
		}
		img, err := resp.Image()
		if err != nil {
			s.logger.Debug("Refine returned no image", "kind", kind)
			return "", nil
		}
		return img.DataURI(), nil
	})
}

// Suggestions proposes complementary pieces for a garment.
func (s *Service) Suggestions(ctx context.Context, image string) (domain.StylistSuggestions, error) {
	if image == "" {
		return domain.StylistSuggestions{}, ErrMissingImage
	}
	return retry.Do(ctx, s.retry.WithName("suggestions"), func(ctx context.Context) (domain.StylistSuggestions, error) {
		resp, err := s.gen.Generate(ctx, genai.Request{
			Model: s.gen.TextModel(),
			Parts: []genai.Part{
				genai.TextPart(suggestionsPrompt),
				genai.ImagePart(jpegMIME, media.Normalize(image, BoundSuggestion, BoundSuggestion)),
			},
			ResponseMIMEType: "application/json",
			ResponseSchema:   suggestionsSchema,
		})
		if err != nil {
			return domain.StylistSuggestions{}, err
		}
		return decodeJSON[domain.StylistSuggestions](resp.Text())
	})
}

// Lookbook renders an editorial image of garment styled with items.
func (s *Service) Lookbook(ctx context.Context, garment string, items []domain.OutfitSuggestion, title string) (string, error) {
	if garment == "" {
		return "", ErrMissingImage
	}
	return retry.Do(ctx, s.retry.WithName("lookbook"), func(ctx context.Context) (string, error) {
		resp, err := s.gen.Generate(ctx, genai.Request{
			Model: s.gen.ImageModel(),
			Parts: []genai.Part{
				genai.TextPart(lookbookPrompt(title, items)),
				genai.ImagePart(jpegMIME, media.Normalize(garment, BoundComposite, BoundComposite)),
			},
			AspectRatio: aspectPortrait,
		})
		if err != nil {
			return "", err
		}
		img, err := resp.Image()
		if err != nil {
			return "", retry.Terminal(fmt.Errorf("lookbook: %w", err))
		}
		return img.DataURI(), nil
	})
}

// ProductImage renders a studio product shot from a description.
func (s *Service) ProductImage(ctx context.Context, description string) (string, error) {
	return retry.Do(ctx, s.retry.WithName("product_image"), func(ctx context.Context) (string, error) {
		resp, err := s.gen.Generate(ctx, genai.Request{
			Model:       s.gen.ImageModel(),
			Parts:       []genai.Part{genai.TextPart(productPrompt(description))},
			AspectRatio: aspectSquare,
		})
		if err != nil {
			return "", err
		}
		img, err := resp.Image()
		if err != nil {
			return "", retry.Terminal(fmt.Errorf("product image: %w", err))
		}
		return img.DataURI(), nil
	})
}

// SelectBestOutfit picks the most suitable image for an occasion.
func (s *Service) SelectBestOutfit(ctx context.Context, images []string, occasion string) (domain.OutfitSelection, error) {
	if len(images) == 0 {
		return domain.OutfitSelection{}, ErrMissingImage
	}
	return retry.Do(ctx, s.retry.WithName("select_outfit"), func(ctx context.Context) (domain.OutfitSelection, error) {
		parts := []genai.Part{genai.TextPart(selectionPrompt(occasion))}
		for _, img := range images {
			parts = append(parts, genai.ImagePart(jpegMIME, media.Normalize(img, BoundAnalysis, BoundAnalysis)))
		}

		resp, err := s.gen.Generate(ctx, genai.Request{
			Model:            s.gen.TextModel(),
			Parts:            parts,
			ResponseMIMEType: "application/json",
			ResponseSchema:   selectionSchema,
		})
		if err != nil {
			return domain.OutfitSelection{}, err
		}

		// selectedIndex is declared as NUMBER and may arrive as 1.0
		raw, err := decodeJSON[struct {
			SelectedIndex float64 `json:"selectedIndex"`
			Reasoning     string  `json:"reasoning"`
			StylingTips   string  `json:"stylingTips"`
		}](resp.Text())
		if err != nil {
			return domain.OutfitSelection{}, err
		}
		sel := domain.OutfitSelection{
			SelectedIndex: int(raw.SelectedIndex),
			Reasoning:     raw.Reasoning,
			StylingTips:   raw.StylingTips,
		}
		if sel.SelectedIndex < 0 || sel.SelectedIndex >= len(images) {
			return domain.OutfitSelection{}, retry.Terminal(
				fmt.Errorf("%w: %d of %d", ErrInvalidSelection, sel.SelectedIndex, len(images)))
		}
		return sel, nil
	})
}

func (s *Service) resolve(ctx context.Context, image string) (string, error) {
	if !media.IsRemote(image) {
		return image, nil
	}
	if s.fetcher == nil {
		return "", fmt.Errorf("stylist: remote image %q needs a fetcher", image)
	}
	return s.fetcher.FetchBase64(ctx, image)
}

// decodeJSON decodes a structured response. Empty text yields the zero value.
func decodeJSON[T any](text string) (T, error) {
	var out T
	text = strings.TrimSpace(text)
	if text == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, retry.Terminal(fmt.Errorf("stylist: decode response: %w", err))
	}
	return out, nil
}
