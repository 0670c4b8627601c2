package lang

import (
	"encoding/json"
	"fmt"
	"os"
)

// FairseqOffset is the shift between the raw vocabulary numbering and the
// model's token ID space, caused by the padding token the model inserts
// ahead of the vocabulary.
const FairseqOffset = 1

// UnsupportedLanguageError reports a language code that cannot be mapped
// to a model token.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Code)
}

// Registry maps canonical language codes to model token IDs for one loaded
// vocabulary. IDs depend on the vocabulary size, so a Registry must be
// rebuilt whenever the vocabulary is reloaded.
type Registry struct {
	base  int64
	index map[string]int
}

// NewRegistry derives the language token IDs for a vocabulary of the given
// size: tokenID(code) = vocabSize + FairseqOffset + indexInTable.
func NewRegistry(vocabSize int) *Registry {
	index := make(map[string]int, len(Codes))
	for i, code := range Codes {
		index[code] = i
	}
	return &Registry{
		base:  int64(vocabSize + FairseqOffset),
		index: index,
	}
}

// TokenID resolves a language code (canonical, or a short code from the
// supported-language mapping) to its model token ID.
func (r *Registry) TokenID(code string) (int64, error) {
	canonical, err := Resolve(code)
	if err != nil {
		return 0, err
	}
	i, ok := r.index[canonical]
	if !ok {
		return 0, &UnsupportedLanguageError{Code: code}
	}
	return r.base + int64(i), nil
}

// IsLanguageToken reports whether a model token ID falls inside the
// language token range.
func (r *Registry) IsLanguageToken(id int64) bool {
	return id >= r.base && id < r.base+int64(len(r.index))
}

// sidecar is the layout of the optional language-metadata JSON that ships
// next to the model artifacts.
type sidecar struct {
	Languages map[string]int64 `json:"languages"`
}

// VerifySidecar cross-checks the sidecar JSON against the derived IDs.
// A missing or unparsable sidecar is tolerated (the formula over the fixed
// table is authoritative), but an entry that parses and disagrees means the
// model artifacts do not match this engine build, which is fatal.
func (r *Registry) VerifySidecar(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil
	}

	for code, id := range sc.Languages {
		i, ok := r.index[code]
		if !ok {
			return &UnsupportedLanguageError{Code: code}
		}
		if want := r.base + int64(i); id != want {
			return fmt.Errorf("language sidecar mismatch for %q: file says %d, derived %d", code, id, want)
		}
	}
	return nil
}
