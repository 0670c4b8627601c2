package vocab

import (
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// buildModel serializes pieces in the wire format the parser expects.
func buildModel(pieces []Piece) []byte {
	var out []byte
	for _, p := range pieces {
		var rec []byte
		rec = protowire.AppendTag(rec, fieldPieceText, protowire.BytesType)
		rec = protowire.AppendBytes(rec, []byte(p.Text))
		rec = protowire.AppendTag(rec, fieldPieceScore, protowire.Fixed32Type)
		rec = protowire.AppendFixed32(rec, math.Float32bits(p.Score))
		if p.Kind != KindNormal {
			rec = protowire.AppendTag(rec, fieldPieceKind, protowire.VarintType)
			rec = protowire.AppendVarint(rec, uint64(p.Kind))
		}
		out = protowire.AppendTag(out, fieldPiece, protowire.BytesType)
		out = protowire.AppendBytes(out, rec)
	}
	return out
}

func testPieces() []Piece {
	return []Piece{
		{Text: "<unk>", Score: 0, Kind: KindUnknown},
		{Text: "<s>", Score: 0, Kind: KindControl},
		{Text: "</s>", Score: 0, Kind: KindControl},
		{Text: "▁", Score: -2.5, Kind: KindNormal},
		{Text: "a", Score: -1.0, Kind: KindNormal},
		{Text: "b", Score: -1.5, Kind: KindNormal},
		{Text: "ab", Score: -0.5, Kind: KindNormal},
	}
}

func TestParsePreservesOrder(t *testing.T) {
	want := testPieces()
	got, err := Parse(buildModel(want))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d pieces, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i].Text {
			t.Errorf("piece %d: text %q, want %q", i, got[i].Text, want[i].Text)
		}
		if got[i].Score != want[i].Score {
			t.Errorf("piece %d: score %v, want %v", i, got[i].Score, want[i].Score)
		}
	}
}

func TestParseDefaultsKindToNormal(t *testing.T) {
	pieces, err := Parse(buildModel([]Piece{{Text: "<unk>", Kind: KindNormal}}))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pieces[0].Kind != KindNormal {
		t.Errorf("kind = %v, want KindNormal", pieces[0].Kind)
	}
}

func TestParseSkipsUnknownFields(t *testing.T) {
	// Append an unrecognized varint field (99) at the top level and an
	// unrecognized bytes field (7) inside a piece record.
	var rec []byte
	rec = protowire.AppendTag(rec, fieldPieceText, protowire.BytesType)
	rec = protowire.AppendBytes(rec, []byte("x"))
	rec = protowire.AppendTag(rec, 7, protowire.BytesType)
	rec = protowire.AppendBytes(rec, []byte("future"))

	var data []byte
	data = protowire.AppendTag(data, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)
	data = protowire.AppendTag(data, fieldPiece, protowire.BytesType)
	data = protowire.AppendBytes(data, rec)

	pieces, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed on unknown fields: %v", err)
	}
	if len(pieces) != 1 || pieces[0].Text != "x" {
		t.Fatalf("got %+v, want one piece %q", pieces, "x")
	}
}

func TestParseTruncatedInput(t *testing.T) {
	data := buildModel(testPieces())

	for _, cut := range []int{1, 3, len(data) - 1} {
		if _, err := Parse(data[:cut]); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Parse(data[:%d]) = %v, want ErrCorrupt", cut, err)
		}
	}
}

func TestParseMalformedVarint(t *testing.T) {
	// A tag followed by a varint that never terminates.
	data := []byte{0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, err := Parse(data); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Parse = %v, want ErrCorrupt", err)
	}
}

func TestNewResolvesUnknownPiece(t *testing.T) {
	v, err := New(testPieces())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if v.UnknownIndex() != 0 {
		t.Errorf("UnknownIndex = %d, want 0", v.UnknownIndex())
	}
	if v.Size() != 7 {
		t.Errorf("Size = %d, want 7", v.Size())
	}
	if i, ok := v.IndexOf("ab"); !ok || i != 6 {
		t.Errorf("IndexOf(ab) = %d,%v, want 6,true", i, ok)
	}
	if got := v.PieceAt(4); got != "a" {
		t.Errorf("PieceAt(4) = %q, want %q", got, "a")
	}
	if got := v.KindAt(0); got != KindUnknown {
		t.Errorf("KindAt(0) = %v, want KindUnknown", got)
	}
	if got := v.KindAt(1); got != KindControl {
		t.Errorf("KindAt(1) = %v, want KindControl", got)
	}
	if got := v.KindAt(4); got != KindNormal {
		t.Errorf("KindAt(4) = %v, want KindNormal", got)
	}
}

func TestNewRejectsMissingUnknownPiece(t *testing.T) {
	if _, err := New([]Piece{{Text: "a"}}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("New = %v, want ErrCorrupt", err)
	}
}

func TestNewKeepsFirstDuplicateIndex(t *testing.T) {
	v, err := New([]Piece{
		{Text: "<unk>"},
		{Text: "dup"},
		{Text: "dup"},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if i, _ := v.IndexOf("dup"); i != 1 {
		t.Errorf("IndexOf(dup) = %d, want 1", i)
	}
}
