package tokenizer

import (
	"strings"

	"github.com/offlingo/offlingo/internal/vocab"
)

// WhitespaceMarker is the reserved symbol the vocabulary uses in place of
// a space, making word boundaries visible to the merge algorithm.
const WhitespaceMarker = "▁"

// Tokenizer encodes text to vocabulary indices and back using greedy
// score-based pair merging.
type Tokenizer struct {
	vocab *vocab.Vocabulary
}

// New wraps a loaded vocabulary.
func New(v *vocab.Vocabulary) *Tokenizer {
	return &Tokenizer{vocab: v}
}

// Encode converts text into a sequence of vocabulary indices.
//
// The text is normalized by prefixing a whitespace marker and mapping each
// space to the marker, then split into single-character symbols. Adjacent
// symbol pairs whose concatenation is in the vocabulary are merged, always
// picking the pair with the highest registered score first (ties go to the
// leftmost occurrence). The order of merges matters: the model was trained
// against exactly this policy, not leftmost-first merging.
func (t *Tokenizer) Encode(text string) []int {
	if text == "" {
		return nil
	}

	normalized := WhitespaceMarker + strings.ReplaceAll(text, " ", WhitespaceMarker)

	runes := []rune(normalized)
	symbols := make([]string, len(runes))
	for i, r := range runes {
		symbols[i] = string(r)
	}

	for len(symbols) > 1 {
		bestScore := float32(0)
		bestAt := -1
		for i := 0; i+1 < len(symbols); i++ {
			id, ok := t.vocab.IndexOf(symbols[i] + symbols[i+1])
			if !ok {
				continue
			}
			if score := t.vocab.ScoreAt(id); bestAt < 0 || score > bestScore {
				bestScore = score
				bestAt = i
			}
		}
		if bestAt < 0 {
			break
		}

		merged := symbols[bestAt] + symbols[bestAt+1]
		symbols = append(symbols[:bestAt+1], symbols[bestAt+2:]...)
		symbols[bestAt] = merged
	}

	ids := make([]int, len(symbols))
	for i, sym := range symbols {
		if id, ok := t.vocab.IndexOf(sym); ok {
			ids[i] = id
		} else {
			ids[i] = t.vocab.UnknownIndex()
		}
	}
	return ids
}

// Decode converts vocabulary indices back into text, mapping the
// whitespace marker to a literal space and stripping the leading one.
func (t *Tokenizer) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(t.vocab.PieceAt(id))
	}
	text := strings.ReplaceAll(sb.String(), WhitespaceMarker, " ")
	return strings.TrimLeft(text, " ")
}
