package stylist

import (
	"fmt"
	"strings"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/genai"
)

const tryOnPrompt = `HIGH-FIDELITY FASHION RECONSTRUCTION.
IMAGE 1: the subject.
IMAGE 2: the target garment.
1. Remove every existing garment from the subject in image 1, respecting skin boundaries, neckline and wrists, with no trace of the original fabric.
2. Render the garment from image 2 true to its material: silk and satin with specular sheen and fluid drape; cotton and linen with visible weave, matte finish and crisp folds.
3. Add realistic creases and tension folds at the joints (elbows, waist, armpits) that follow the subject's pose.
4. Match the lighting intensity and temperature of image 1, with consistent highlights and contact shadows.
5. Keep the subject's face, hair and skin tone unchanged.
Return a single photorealistic result. Do not return the original photos.`

const chatInstruction = "You are LuxeFit AI. Provide elite, concierge-level styling advice in exactly one sentence."

const (
	colorPrompt       = "Analyze skin undertones and return Seasonal Palette JSON."
	suggestionsPrompt = "Suggest 3 complementary styling pieces. Return JSON."
)

func refinePrompt(kind domain.RefineKind) string {
	return fmt.Sprintf("NEURAL POLISHING: Optimize lighting for %s. Ensure realistic shadows and micro-textures.", kind)
}

func lookbookPrompt(title string, items []domain.OutfitSuggestion) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.ItemName)
	}
	return fmt.Sprintf("PROFESSIONAL LOOKBOOK: Fashion editorial for %s. Main garment styled with %s. High-end studio lighting.",
		title, strings.Join(names, ", "))
}

func productPrompt(description string) string {
	return fmt.Sprintf("High-end product shot of %s, centered, pure white studio background.", description)
}

func selectionPrompt(occasion string) string {
	return fmt.Sprintf("Analyze for %s and pick the best. Return JSON.", occasion)
}

var colorSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"season": {Type: genai.TypeString},
		"colors": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"advice": {Type: genai.TypeString},
	},
	Required: []string{"season", "colors", "advice"},
}

var suggestionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"conceptTitle": {Type: genai.TypeString},
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"itemName":          {Type: genai.TypeString},
					"description":       {Type: genai.TypeString},
					"category":          {Type: genai.TypeString},
					"searchQuery":       {Type: genai.TypeString},
					"visualDescription": {Type: genai.TypeString},
				},
				Required: []string{"itemName", "description", "category", "searchQuery", "visualDescription"},
			},
		},
	},
	Required: []string{"conceptTitle", "suggestions"},
}

var selectionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"selectedIndex": {Type: genai.TypeNumber},
		"reasoning":     {Type: genai.TypeString},
		"stylingTips":   {Type: genai.TypeString},
	},
	Required: []string{"selectedIndex", "reasoning", "stylingTips"},
}
