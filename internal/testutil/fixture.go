package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/offlingo/offlingo/internal/infer"
	"github.com/offlingo/offlingo/internal/models"
)

// Fixture vocabulary: reserved pieces first, then the merge chain for
// "hi". With the +1 model-ID shift, "▁hi" (raw index 4) is model ID 5;
// language tokens start at vocabSize+1 = 7, so eng_Latn (table index 46)
// is 53 and fra_Latn (index 56) is 63.
const (
	FixtureEngToken  = 7 + 46
	FixtureFraToken  = 7 + 56
	FixtureHiModelID = 5
	// FixtureLogitsSize covers every language token ID of the fixture
	// vocabulary.
	FixtureLogitsSize = 256
)

var fixturePieces = []struct {
	text  string
	score float32
}{
	{"<unk>", 0},
	{"<s>", 0},
	{"</s>", 0},
	{"▁h", -2},
	{"▁hi", -1},
	{"▁hello", -1},
}

// BuildVocabModel serializes the fixture vocabulary in the wire format the
// parser expects.
func BuildVocabModel() []byte {
	var out []byte
	for _, p := range fixturePieces {
		var rec []byte
		rec = protowire.AppendTag(rec, 1, protowire.BytesType)
		rec = protowire.AppendBytes(rec, []byte(p.text))
		rec = protowire.AppendTag(rec, 2, protowire.Fixed32Type)
		rec = protowire.AppendFixed32(rec, math.Float32bits(p.score))
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, rec)
	}
	return out
}

// WriteModelDir writes a complete fixture model directory into a fresh
// temp dir. sidecar, when non-empty, becomes the language sidecar JSON.
func WriteModelDir(t *testing.T, sidecar string) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string][]byte{
		models.EncoderFile:       []byte("onnx"),
		models.DecoderFile:       []byte("onnx"),
		models.CachedDecoderFile: []byte("onnx"),
		models.VocabularyFile:    BuildVocabModel(),
	}
	if sidecar != "" {
		files[models.SidecarFile] = []byte(sidecar)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
	return dir
}

// ScriptModelDir registers scripted sessions for the artifacts under dir
// so the engine emits the given token sequence.
func ScriptModelDir(rt *MockRuntime, dir string, tokens []int64) *Seq2SeqScript {
	return ScriptSeq2Seq(rt,
		filepath.Join(dir, models.EncoderFile),
		filepath.Join(dir, models.DecoderFile),
		filepath.Join(dir, models.CachedDecoderFile),
		FixtureLogitsSize, tokens)
}

// EncoderSession returns the mock session that serves dir's encoder.
func (m *MockRuntime) EncoderSession(dir string) *MockSession {
	return m.Session(filepath.Join(dir, models.EncoderFile))
}

var _ infer.Runtime = (*MockRuntime)(nil)
