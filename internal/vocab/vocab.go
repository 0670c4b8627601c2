package vocab

import "fmt"

// Kind classifies a vocabulary piece. The numbering mirrors the model
// file's own enum, where Normal is the implicit default.
type Kind int

const (
	KindNormal      Kind = 1
	KindUnknown     Kind = 2
	KindControl     Kind = 3
	KindUserDefined Kind = 4
	KindUnused      Kind = 5
	KindByte        Kind = 6
)

// UnknownPieceText is the literal text of the unknown piece, used to
// resolve its index at load time.
const UnknownPieceText = "<unk>"

// Piece is one vocabulary entry. Its index in the vocabulary is its token
// ID in the tokenizer's own numbering space.
type Piece struct {
	Text  string
	Score float32
	Kind  Kind
}

// Vocabulary is an immutable ordered piece list with derived lookups.
type Vocabulary struct {
	pieces   []Piece
	index    map[string]int
	unkIndex int
}

// New builds the lookup structures over pieces. The unknown piece must be
// resolvable by its literal text. Duplicate piece texts keep the first
// (lowest) index so token IDs stay stable.
func New(pieces []Piece) (*Vocabulary, error) {
	index := make(map[string]int, len(pieces))
	for i, p := range pieces {
		if _, ok := index[p.Text]; !ok {
			index[p.Text] = i
		}
	}

	unk, ok := index[UnknownPieceText]
	if !ok {
		return nil, fmt.Errorf("%w: no %q piece", ErrCorrupt, UnknownPieceText)
	}

	return &Vocabulary{
		pieces:   pieces,
		index:    index,
		unkIndex: unk,
	}, nil
}

// Size returns the number of pieces.
func (v *Vocabulary) Size() int {
	return len(v.pieces)
}

// PieceAt returns the piece text for an index.
func (v *Vocabulary) PieceAt(i int) string {
	if i < 0 || i >= len(v.pieces) {
		return ""
	}
	return v.pieces[i].Text
}

// ScoreAt returns the merge score for an index.
func (v *Vocabulary) ScoreAt(i int) float32 {
	return v.pieces[i].Score
}

// KindAt returns the kind for an index.
func (v *Vocabulary) KindAt(i int) Kind {
	return v.pieces[i].Kind
}

// IndexOf returns the index of a piece text.
func (v *Vocabulary) IndexOf(text string) (int, bool) {
	i, ok := v.index[text]
	return i, ok
}

// UnknownIndex returns the index of the unknown piece.
func (v *Vocabulary) UnknownIndex() int {
	return v.unkIndex
}
