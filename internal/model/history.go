package model

import (
	"fmt"
	"mime"
	"strings"
)

// Attachment is a file submitted with a legal check
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Submission is one user request
type Submission struct {
	Query string
	Mode  Mode
	File  *Attachment
}

// IsEmpty reports whether there is nothing to analyze
func (s Submission) IsEmpty() bool {
	return strings.TrimSpace(s.Query) == "" && s.File == nil
}

// FileName returns the attachment name, or "" when there is none
func (s Submission) FileName() string {
	if s.File == nil {
		return ""
	}
	return s.File.Name
}

// HistoryEntry records one successful analysis
type HistoryEntry struct {
	ID        string `json:"id"`
	Query     string `json:"query"`              // May be empty when only a file was submitted
	FileName  string `json:"fileName,omitempty"` // Attachment name, if any
	Result    Result `json:"result"`
	Mode      Mode   `json:"mode"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// Validate checks that the result shape matches the entry mode
func (e HistoryEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("history entry has no id")
	}
	if err := e.Result.Validate(); err != nil {
		return err
	}
	if e.Result.Mode != e.Mode {
		return fmt.Errorf("history entry mode %q does not match result mode %q", e.Mode, e.Result.Mode)
	}
	return nil
}

// Theme is the display theme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when no valid preference is stored
const DefaultTheme = ThemeDark

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// MaxAttachmentBytes is the largest accepted attachment
const MaxAttachmentBytes = 20 << 20

var documentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// AllowedMIMEType reports whether an attachment of this type is accepted:
// images, video, PDF and Word documents
func AllowedMIMEType(mimeType string) bool {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "video/") || documentTypes[mt]
}
