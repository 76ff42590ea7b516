package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/logger"
	"github.com/custodia-labs/grasp/internal/normalisers/pdf"
	"github.com/custodia-labs/grasp/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry routes files to normalisers by extension.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string][]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with the PDF and plain text normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser for each of its extensions.
// Normalisers sharing an extension are tried in priority order.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExt[ext] = list
	}
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise extracts the text of raw with the first normaliser registered for
// its extension that accepts the sniffed content type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	ext := raw.Extension()
	r.mu.RLock()
	candidates := r.byExt[ext]
	r.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	detected := mimetype.Detect(raw.Content)
	logger.Debug("Detected %s for %s", detected.String(), raw.Name)
	if raw.MIMEType == "" {
		raw.MIMEType = detected.String()
	}

	for _, n := range candidates {
		if len(raw.Content) > 0 && !accepts(n, detected) {
			continue
		}
		result, err := n.Normalise(ctx, raw)
		if err != nil {
			return nil, err
		}
		if result.Document.Metadata == nil {
			result.Document.Metadata = make(map[string]any)
		}
		result.Document.Metadata["mime_type"] = detected.String()
		return result, nil
	}

	return nil, fmt.Errorf("%w: %s content in a %s file", domain.ErrExtraction, detected.String(), ext)
}

// accepts reports whether n handles m or any of its parent types.
// A supported type ending in "/*" matches every subtype.
func accepts(n driven.Normaliser, m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		for _, supported := range n.SupportedMIMETypes() {
			if prefix, ok := strings.CutSuffix(supported, "/*"); ok {
				if strings.HasPrefix(m.String(), prefix+"/") {
					return true
				}
				continue
			}
			if m.Is(supported) {
				return true
			}
		}
	}
	return false
}
