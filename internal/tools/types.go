package tools

import "strings"

// Schema is the JSON-schema subset used for tool inputs.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one input member.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Default     any       `json:"default,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Declaration describes a tool to a caller.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InputSchema *Schema `json:"input_schema"`
}

// Content block types.
const (
	ContentText  = "text"
	ContentImage = "image"
)

// ContentBlock is one piece of a tool result.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"` // base64, image blocks only
	MimeType string `json:"mime_type,omitempty"`
}

// Result is what a tool call returns.
type Result struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"is_error,omitempty"`
}

// TextResult returns a result with a single text block.
func TextResult(text string) Result {
	return Result{Content: []ContentBlock{{Type: ContentText, Text: text}}}
}

// ErrorResult returns a single text block flagged as an error.
func ErrorResult(text string) Result {
	r := TextResult(text)
	r.IsError = true
	return r
}

// ImageResult returns a single base64 image block.
func ImageResult(data, mimeType string) Result {
	return Result{Content: []ContentBlock{{Type: ContentImage, Data: data, MimeType: mimeType}}}
}

// Text joins the text blocks of r with newlines.
func (r Result) Text() string {
	var parts []string
	for _, c := range r.Content {
		if c.Type == ContentText {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
