// Package tokenizer implements the byte-pair-encoding step between text
// and vocabulary indices, plus the shift between raw indices and the
// model's own token ID space.
package tokenizer
