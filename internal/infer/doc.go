// Package infer drives the autoregressive encoder-decoder inference
// pipeline against an external tensor runtime. It prepares inputs, runs
// the three sessions in order, and manages the two key/value cache sets:
// the cross-attention cache computed once per call and the self-attention
// cache replaced on every decode step.
package infer
