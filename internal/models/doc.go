// Package models locates and validates the on-disk artifacts of a
// translation model: the three network files, the vocabulary, and the
// optional language sidecar. Discovery is strict so that session opening
// never starts against a half-copied model directory.
package models
