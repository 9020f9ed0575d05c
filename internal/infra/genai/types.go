package genai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoImage is returned when a response carries no inline image part.
	ErrNoImage = errors.New("genai: response contains no image data")
	// ErrBlocked is returned when the service refuses the prompt.
	ErrBlocked = errors.New("genai: prompt blocked")
	// ErrMissingAPIKey is returned by NewClient without a credential.
	ErrMissingAPIKey = errors.New("genai: api key is required")
)

// Schema types understood by the JSON response schema.
const (
	TypeObject = "OBJECT"
	TypeString = "STRING"
	TypeArray  = "ARRAY"
	TypeNumber = "NUMBER"
)

// InlineData is a base64 encoded media payload.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// DataURI returns the payload as a data URI.
func (d *InlineData) DataURI() string {
	mime := d.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + d.Data
}

// Part is one element of a request or response content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline image part from a base64 payload.
func ImagePart(mimeType, data string) Part {
	return Part{InlineData: &InlineData{MIMEType: mimeType, Data: data}}
}

// Schema describes a structured JSON response.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// Request is a single generateContent call.
type Request struct {
	Model             string
	Parts             []Part
	SystemInstruction string
	MaxOutputTokens   int
	ThinkingBudget    int
	ResponseMIMEType  string
	ResponseSchema    *Schema
	AspectRatio       string
}

// Response is the decoded generateContent result.
type Response struct {
	Candidates []Candidate `json:"candidates"`
	Feedback   *Feedback   `json:"promptFeedback,omitempty"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Content groups parts under a role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Feedback reports prompt-level safety decisions.
type Feedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// Text concatenates the text parts of the first candidate.
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Image returns the first inline data part of the first candidate.
func (r *Response) Image() (*InlineData, error) {
	if r == nil || len(r.Candidates) == 0 {
		return nil, ErrNoImage
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData, nil
		}
	}
	return nil, ErrNoImage
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("genai: http %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: http %d: %s", e.Code, e.Message)
}

// StatusCode exposes the HTTP status for retry classification.
func (e *APIError) StatusCode() int {
	return e.Code
}
