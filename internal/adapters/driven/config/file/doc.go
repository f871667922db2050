// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML or YAML configuration with CLEARPATH_* environment overrides
//   - PromptStore: editable prompt templates
package file
