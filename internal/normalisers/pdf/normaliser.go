// Package pdf extracts the text layer of PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the content type of PDF files.
const MIMEType = "application/pdf"

// maxTitleLength bounds the first line used as a title.
const maxTitleLength = 200

// Normaliser handles PDF documents in-process.
// Scanned PDFs without a text layer produce empty content.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{domain.ExtensionPDF}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the plain text of every page in order.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !mimetype.Detect(raw.Content).Is(MIMEType) {
		return nil, fmt.Errorf("%w: %s is not a PDF", domain.ErrExtraction, filepath.Base(raw.Name))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, pages, err := extractText(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, filepath.Base(raw.Name), err)
	}

	metadata := copyMetadata(raw.Metadata)
	metadata["format"] = "pdf"
	metadata["pages"] = pages

	doc := domain.Document{
		URI:      raw.Name,
		Title:    extractTitle(content, raw.Name),
		Content:  content,
		Metadata: metadata,
	}
	return &driven.NormaliseResult{Document: doc}, nil
}

// extractText reads the text layer. The parser panics on some malformed
// files, so panics are reported as errors.
func extractText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", 0, err
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", 0, err
	}
	return string(out), r.NumPage(), nil
}

// extractTitle uses the first short non-empty line, or the file name.
func extractTitle(content, name string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) < maxTitleLength {
			return line
		}
	}

	filename := filepath.Base(name)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

func copyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
