package tokenizer

import "github.com/offlingo/offlingo/internal/lang"

// The model's token ID space is shifted against the raw vocabulary
// numbering ("fairseq" convention): the model reserves a padding token the
// vocabulary does not enumerate, so every raw index moves up by
// lang.FairseqOffset, and the raw unknown index maps to a fixed reserved ID.
const (
	// EOSModelID is the end-of-sequence token in model numbering.
	EOSModelID int64 = 2
	// UnknownModelID is where the raw unknown index lands in model numbering.
	UnknownModelID int64 = 3
	// reservedModelIDs is the count of low model IDs (pad, bos, eos, unk)
	// that never correspond to text and are dropped on the output path.
	reservedModelIDs int64 = 4
)

// ToModelIDs shifts raw vocabulary indices into model token IDs.
func (t *Tokenizer) ToModelIDs(raw []int) []int64 {
	unk := t.vocab.UnknownIndex()
	ids := make([]int64, len(raw))
	for i, r := range raw {
		if r == unk {
			ids[i] = UnknownModelID
		} else {
			ids[i] = int64(r) + lang.FairseqOffset
		}
	}
	return ids
}

// FromModelIDs reverses the shift and filters out everything that is not
// text: end-of-sequence, the reserved low range, language tokens, and IDs
// past the vocabulary.
func (t *Tokenizer) FromModelIDs(ids []int64, isLanguageToken func(int64) bool) []int {
	size := int64(t.vocab.Size())
	raw := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < reservedModelIDs || id == EOSModelID {
			continue
		}
		if isLanguageToken != nil && isLanguageToken(id) {
			continue
		}
		r := id - lang.FairseqOffset
		if r >= size {
			continue
		}
		raw = append(raw, int(r))
	}
	return raw
}
