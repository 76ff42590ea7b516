package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grasp/internal/core/ports/driven"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// Runtime is everything a document command needs, built after flags and
// the environment file have been read.
type Runtime struct {
	// Session owns the active document.
	Session driving.SessionService

	// Metrics serves backend call metrics. Optional.
	Metrics http.Handler

	// Watch reloads prompts when their files change. Optional.
	Watch func(ctx context.Context) error

	// Close releases the backend.
	Close func() error
}

// RuntimeOptions adjusts a runtime for one command.
type RuntimeOptions struct {
	// MaxWords overrides the configured summary bound when positive.
	MaxWords int
}

// RuntimeFactory builds a runtime from the current settings.
type RuntimeFactory func(ctx context.Context, opts RuntimeOptions) (*Runtime, error)

var (
	settingsService driving.SettingsService
	llmValidator    driven.LLMConfigValidator
	newRuntime      RuntimeFactory
)

// SetSettingsService sets the settings service used by the settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetLLMValidator sets the validator used by 'settings check'.
func SetLLMValidator(v driven.LLMConfigValidator) {
	llmValidator = v
}

// SetRuntimeFactory sets how document commands build their runtime.
func SetRuntimeFactory(f RuntimeFactory) {
	newRuntime = f
}

// startRuntime builds the runtime and prints the backend status line once.
func startRuntime(cmd *cobra.Command, opts RuntimeOptions) (*Runtime, error) {
	if newRuntime == nil {
		return nil, errors.New("runtime not configured")
	}
	rt, err := newRuntime(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}
	if rt.Close == nil {
		rt.Close = func() error { return nil }
	}
	cmd.PrintErrln(rt.Session.Status())
	return rt, nil
}

// openDocument reads path, builds a runtime and loads the file into it.
func openDocument(cmd *cobra.Command, path string, opts RuntimeOptions) (*Runtime, *driving.DocumentInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	rt, err := startRuntime(cmd, opts)
	if err != nil {
		return nil, nil, err
	}

	info, err := rt.Session.Load(cmd.Context(), filepath.Base(path), data)
	if err != nil {
		rt.Close() //nolint:errcheck
		return nil, nil, err
	}
	return rt, info, nil
}

// watchPrompts starts the prompt watcher for long-running commands.
func watchPrompts(ctx context.Context, rt *Runtime) {
	if rt.Watch == nil {
		return
	}
	if err := rt.Watch(ctx); err != nil {
		// Prompts still load; only live reload is lost.
		fmt.Fprintf(os.Stderr, "prompt watch disabled: %v\n", err)
	}
}
