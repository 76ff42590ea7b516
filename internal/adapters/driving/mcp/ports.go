package mcp

import (
	"net/http"

	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server drives.
type Ports struct {
	// Session owns the active document.
	Session driving.SessionService

	// Metrics is served on /metrics in HTTP mode. Optional.
	Metrics http.Handler

	// ReadFile loads documents for load_document. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}
