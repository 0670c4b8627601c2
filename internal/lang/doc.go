// Package lang maps language codes to the model's language token IDs.
// The IDs are positional over a fixed table of 202 canonical codes and
// depend on the loaded vocabulary size, so the registry is rebuilt on
// every vocabulary load.
package lang
