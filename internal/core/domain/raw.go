package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument represents the uploaded file before text extraction.
type RawDocument struct {
	// Name is the original file name, including its extension.
	Name string

	// MIMEType is the detected content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]any
}

// Extension returns the lower-cased file extension including the dot.
func (r *RawDocument) Extension() string {
	return strings.ToLower(filepath.Ext(r.Name))
}

// Supported file extensions.
const (
	ExtensionPDF  = ".pdf"
	ExtensionText = ".txt"
)

// IsSupportedExtension reports whether ext can be loaded.
func IsSupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtensionPDF, ExtensionText:
		return true
	default:
		return false
	}
}
