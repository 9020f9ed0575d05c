package domain

// LookSource records how a look entered the closet.
type LookSource string

const (
	LookSourceTryOn      LookSource = "try-on"
	LookSourceStyledLook LookSource = "styled-look"
	LookSourceManualSave LookSource = "manual-save"
)

// Closet folders with a meaning for LookSource.
const (
	FolderTryOns           = "Try-Ons"
	FolderStylistArchive   = "Stylist Archive"
	FolderLookbookInspired = "Lookbook Inspired"
	FolderUncategorized    = "Uncategorized"
)

// SourceForFolder derives the look source from its target folder.
func SourceForFolder(folder string) LookSource {
	switch folder {
	case FolderTryOns:
		return LookSourceTryOn
	case FolderStylistArchive, FolderLookbookInspired:
		return LookSourceStyledLook
	default:
		return LookSourceManualSave
	}
}

// SavedLook is a look archived in the closet.
type SavedLook struct {
	ID           string     `json:"id"`
	ImageURL     string     `json:"imageUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	SavedAt      int64      `json:"savedAt"` // unix milliseconds
	Source       LookSource `json:"source"`
	Items        []string   `json:"items"`
	Folder       string     `json:"folder"`
	IsFavorite   bool       `json:"isFavorite"`
}

// LookDraft is a look before it is uploaded and archived.
// Image is a data URI, bare base64 or an http(s) URL.
type LookDraft struct {
	ID         string
	Image      string
	Items      []string
	Folder     string
	IsFavorite bool
}
