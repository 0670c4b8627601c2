package lang

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCodesTableContract(t *testing.T) {
	if len(Codes) != 202 {
		t.Fatalf("table has %d codes, want 202", len(Codes))
	}

	// Known positions for the shipped model family. If one of these
	// fails, the table was edited and every downstream token ID moved.
	known := map[string]int{
		"ace_Arab": 0,
		"eng_Latn": 46,
		"fra_Latn": 56,
		"spa_Latn": 160,
		"zul_Latn": 201,
	}
	for code, want := range known {
		found := -1
		for i, c := range Codes {
			if c == code {
				found = i
				break
			}
		}
		if found != want {
			t.Errorf("index of %s = %d, want %d", code, found, want)
		}
	}
}

func TestTokenIDFormula(t *testing.T) {
	r := NewRegistry(256000)

	id, err := r.TokenID("eng_Latn")
	if err != nil {
		t.Fatalf("TokenID failed: %v", err)
	}
	if id != 256047 {
		t.Errorf("TokenID(eng_Latn) = %d, want 256047", id)
	}

	// Short code resolves to the same ID.
	short, err := r.TokenID("en")
	if err != nil {
		t.Fatalf("TokenID(en) failed: %v", err)
	}
	if short != id {
		t.Errorf("TokenID(en) = %d, want %d", short, id)
	}
}

func TestTokenIDTracksVocabularySize(t *testing.T) {
	small := NewRegistry(100)
	large := NewRegistry(256000)

	for _, code := range []string{"ace_Arab", "eng_Latn", "zul_Latn"} {
		a, err := small.TokenID(code)
		if err != nil {
			t.Fatalf("TokenID failed: %v", err)
		}
		b, err := large.TokenID(code)
		if err != nil {
			t.Fatalf("TokenID failed: %v", err)
		}
		if b-a != 256000-100 {
			t.Errorf("%s: IDs %d and %d do not differ by the vocabulary delta", code, a, b)
		}
	}
}

func TestTokenIDUnsupported(t *testing.T) {
	r := NewRegistry(1000)

	for _, code := range []string{"", "xx", "xxx_Latn"} {
		_, err := r.TokenID(code)
		var unsupported *UnsupportedLanguageError
		if !errors.As(err, &unsupported) {
			t.Errorf("TokenID(%q) = %v, want UnsupportedLanguageError", code, err)
		}
	}
}

func TestIsLanguageToken(t *testing.T) {
	r := NewRegistry(1000)

	if r.IsLanguageToken(1000) {
		t.Error("ID below the language range reported as language token")
	}
	if !r.IsLanguageToken(1001) {
		t.Error("first language ID not recognized")
	}
	if !r.IsLanguageToken(1001 + 201) {
		t.Error("last language ID not recognized")
	}
	if r.IsLanguageToken(1001 + 202) {
		t.Error("ID past the language range reported as language token")
	}
}

func TestVerifySidecar(t *testing.T) {
	r := NewRegistry(256000)
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	good := write("good.json", `{"languages":{"eng_Latn":256047,"ace_Arab":256001}}`)
	if err := r.VerifySidecar(good); err != nil {
		t.Errorf("VerifySidecar(good) = %v, want nil", err)
	}

	bad := write("bad.json", `{"languages":{"eng_Latn":123}}`)
	if err := r.VerifySidecar(bad); err == nil {
		t.Error("VerifySidecar accepted a mismatched ID")
	}

	// Missing and unparsable sidecars are tolerated.
	if err := r.VerifySidecar(filepath.Join(dir, "absent.json")); err != nil {
		t.Errorf("VerifySidecar(absent) = %v, want nil", err)
	}
	garbage := write("garbage.json", `{not json`)
	if err := r.VerifySidecar(garbage); err != nil {
		t.Errorf("VerifySidecar(garbage) = %v, want nil", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"en", "eng_Latn", false},
		{"EN", "eng_Latn", false},
		{"eng_Latn", "eng_Latn", false},
		{"zh", "zho_Hans", false},
		{"", "", true},
		{"qq", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"en", true},
		{"eng_Latn", true},
		{"zh", true},
		// Resolve lets unknown canonical-shaped codes through, Supported
		// checks them against the table.
		{"xxx_Latn", false},
		{"qq", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.in); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
