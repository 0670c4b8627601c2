package vocab

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrCorrupt indicates a malformed vocabulary file. It is fatal to
// initialization; callers must not build a partial vocabulary from it.
var ErrCorrupt = errors.New("corrupt vocabulary model")

// Wire layout of the vocabulary model:
//
//	top-level: field 1 (bytes, repeated) = one piece record each
//	piece:     field 1 (bytes)   = UTF-8 piece text
//	           field 2 (fixed32) = merge score (float32)
//	           field 3 (varint)  = piece kind, Normal when absent
//
// Any other field, at either level, is skipped so that newer model files
// still load.
const (
	fieldPiece      = 1
	fieldPieceText  = 1
	fieldPieceScore = 2
	fieldPieceKind  = 3
)

// Parse decodes raw vocabulary model bytes into pieces in file order.
func Parse(data []byte) ([]Piece, error) {
	var pieces []Piece
	offset := 0

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad tag at offset %d", ErrCorrupt, offset)
		}
		data = data[n:]
		offset += n

		if num == fieldPiece && typ == protowire.BytesType {
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: truncated piece record at offset %d", ErrCorrupt, offset)
			}
			piece, err := parsePiece(msg)
			if err != nil {
				return nil, fmt.Errorf("piece %d: %w", len(pieces), err)
			}
			pieces = append(pieces, piece)
			data = data[n:]
			offset += n
			continue
		}

		// Unknown field: skip, never fail.
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("%w: unterminated field %d at offset %d", ErrCorrupt, num, offset)
		}
		data = data[n:]
		offset += n
	}

	return pieces, nil
}

// parsePiece decodes a single length-delimited piece record.
func parsePiece(data []byte) (Piece, error) {
	piece := Piece{Kind: KindNormal}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Piece{}, fmt.Errorf("%w: bad piece tag", ErrCorrupt)
		}
		data = data[n:]

		switch {
		case num == fieldPieceText && typ == protowire.BytesType:
			text, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Piece{}, fmt.Errorf("%w: truncated piece text", ErrCorrupt)
			}
			piece.Text = string(text)
			data = data[n:]

		case num == fieldPieceScore && typ == protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return Piece{}, fmt.Errorf("%w: truncated piece score", ErrCorrupt)
			}
			piece.Score = math.Float32frombits(bits)
			data = data[n:]

		case num == fieldPieceKind && typ == protowire.VarintType:
			kind, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Piece{}, fmt.Errorf("%w: truncated piece kind", ErrCorrupt)
			}
			piece.Kind = Kind(kind)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Piece{}, fmt.Errorf("%w: unterminated piece field %d", ErrCorrupt, num)
			}
			data = data[n:]
		}
	}

	return piece, nil
}

// Load reads and parses a vocabulary model file, returning the ready-to-use
// Vocabulary.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary model: %w", err)
	}

	pieces, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return New(pieces)
}
