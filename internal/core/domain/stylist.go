package domain

// ColorAnalysis is a seasonal palette derived from a portrait.
type ColorAnalysis struct {
	Season string   `json:"season"`
	Colors []string `json:"colors"`
	Advice string   `json:"advice"`
}

// OutfitSuggestion is one complementary piece proposed by the stylist.
type OutfitSuggestion struct {
	ItemName          string `json:"itemName"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	SearchQuery       string `json:"searchQuery"`
	VisualDescription string `json:"visualDescription,omitempty"`
}

type StylistSuggestions struct {
	ConceptTitle string             `json:"conceptTitle"`
	Suggestions  []OutfitSuggestion `json:"suggestions"`
}

// OutfitSelection is the stylist's pick among candidate outfits.
type OutfitSelection struct {
	SelectedIndex int    `json:"selectedIndex"`
	Reasoning     string `json:"reasoning"`
	StylingTips   string `json:"stylingTips"`
}

// RefineKind selects a try-on polishing pass.
type RefineKind string

const (
	RefineFixLight RefineKind = "fix-light"
	RefineFit      RefineKind = "refine-fit"
	RefinePopColor RefineKind = "pop-color"
)
