// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.grasp.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: Editable prompt templates with hot reload
package file
