package models

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Standard artifact file names inside a model directory.
const (
	EncoderFile       = "encoder_model.onnx"
	DecoderFile       = "decoder_model.onnx"
	CachedDecoderFile = "decoder_with_past_model.onnx"
	VocabularyFile    = "sentencepiece.bpe.model"
	SidecarFile       = "languages.json"
)

// Artifacts holds the resolved paths of one model directory.
type Artifacts struct {
	Dir           string
	Encoder       string
	Decoder       string
	CachedDecoder string
	Vocabulary    string
	// Sidecar is empty when the optional language sidecar is absent.
	Sidecar string
}

// Locate resolves and validates the artifact paths under dir. All four
// required files must exist as regular files; the sidecar is optional.
func Locate(dir string) (*Artifacts, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("model directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("model directory %s: not a directory", dir)
	}

	a := &Artifacts{
		Dir:           dir,
		Encoder:       filepath.Join(dir, EncoderFile),
		Decoder:       filepath.Join(dir, DecoderFile),
		CachedDecoder: filepath.Join(dir, CachedDecoderFile),
		Vocabulary:    filepath.Join(dir, VocabularyFile),
	}

	var missing []string
	for _, path := range []string{a.Encoder, a.Decoder, a.CachedDecoder, a.Vocabulary} {
		if !isRegularFile(path) {
			missing = append(missing, filepath.Base(path))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("model directory %s: missing artifacts %v", dir, missing)
	}

	if sidecar := filepath.Join(dir, SidecarFile); isRegularFile(sidecar) {
		a.Sidecar = sidecar
	}
	return a, nil
}

// List returns the names of subdirectories of root that hold a complete
// model, sorted for stable output.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("model root %s: %w", root, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := Locate(filepath.Join(root, entry.Name())); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
