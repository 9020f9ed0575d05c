package domain

// Measurements are free-form body measurements. "-" marks an unset value.
type Measurements struct {
	Height string `json:"height"`
	Bust   string `json:"bust"`
	Waist  string `json:"waist"`
	Hips   string `json:"hips"`
}

type NotificationPreferences struct {
	Push             bool `json:"push"`
	Email            bool `json:"email"`
	StyleSuggestions bool `json:"styleSuggestions"`
	Security         bool `json:"security"`
}

type AppPreferences struct {
	DarkMode bool   `json:"darkMode"`
	Language string `json:"language"` // English, Hindi, Telugu
	Units    string `json:"units"`    // cm, inches
}

type UserPreferences struct {
	IsPrivate                   bool                    `json:"isPrivate"`
	PersonalizedRecommendations bool                    `json:"personalizedRecommendations"`
	AllowAnalytics              bool                    `json:"allowAnalytics"`
	Notifications               NotificationPreferences `json:"notifications"`
	App                         AppPreferences          `json:"app"`
}

// UserProfile is a member's account document.
type UserProfile struct {
	UID          string           `json:"uid"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Username     string           `json:"username,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	PhotoURL     string           `json:"photoURL"`
	Measurements *Measurements    `json:"measurements,omitempty"`
	Preferences  *UserPreferences `json:"preferences,omitempty"`
	CreatedAt    string           `json:"createdAt,omitempty"`
	UpdatedAt    string           `json:"updatedAt,omitempty"`
}
