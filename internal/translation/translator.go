package translation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/offlingo/offlingo/internal/infer"
	"github.com/offlingo/offlingo/internal/lang"
	"github.com/offlingo/offlingo/internal/models"
	"github.com/offlingo/offlingo/internal/tokenizer"
	"github.com/offlingo/offlingo/internal/vocab"
)

// Request describes one translation call. Language codes may be short
// forms ("en") or canonical codes ("eng_Latn").
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	// ContextHint is accepted for forward compatibility with
	// document-level models; the current model family has no input for
	// it, so it does not influence the result.
	ContextHint string
}

// Result carries the translated text and whether it was served from the
// cache.
type Result struct {
	Text      string
	FromCache bool
}

// Translator ties the pipeline together. Create one with New, load a
// model with Initialize, then call Translate as often as needed.
type Translator struct {
	mu sync.Mutex

	rt        infer.Runtime
	cacheSize int
	maxSteps  int

	vocabulary *vocab.Vocabulary
	tok        *tokenizer.Tokenizer
	langs      *lang.Registry
	engine     *infer.Engine
	cache      *lruCache

	initialized bool
}

// Option adjusts a Translator at construction time.
type Option func(*Translator)

// WithCacheSize overrides the default result cache capacity.
func WithCacheSize(n int) Option {
	return func(t *Translator) { t.cacheSize = n }
}

// WithMaxSteps overrides the decode step cap of the inference engine.
func WithMaxSteps(n int) Option {
	return func(t *Translator) { t.maxSteps = n }
}

// New creates an uninitialized Translator bound to an inference runtime.
func New(rt infer.Runtime, opts ...Option) *Translator {
	t := &Translator{rt: rt, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Initialize loads the model artifacts under modelDir: vocabulary first,
// then the language registry derived from it, then the three network
// sessions. Failures leave the Translator uninitialized with nothing held
// open. Calling Initialize on an initialized Translator is a no-op.
func (t *Translator) Initialize(modelDir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	artifacts, err := models.Locate(modelDir)
	if err != nil {
		return err
	}

	v, err := vocab.Load(artifacts.Vocabulary)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}

	registry := lang.NewRegistry(v.Size())
	if artifacts.Sidecar != "" {
		if err := registry.VerifySidecar(artifacts.Sidecar); err != nil {
			return err
		}
	}

	cfg := infer.DefaultConfig()
	if t.maxSteps > 0 {
		cfg.MaxSteps = t.maxSteps
	}
	engine := infer.New(t.rt, cfg)
	if err := engine.Open(artifacts.Encoder, artifacts.Decoder, artifacts.CachedDecoder); err != nil {
		return err
	}

	t.vocabulary = v
	t.tok = tokenizer.New(v)
	t.langs = registry
	t.engine = engine
	t.cache = newLRUCache(t.cacheSize)
	t.initialized = true
	return nil
}

// Translate runs one text through the pipeline. Blank input returns an
// empty result without touching the model. Language validation happens
// before any inference work so unsupported codes fail fast.
func (t *Translator) Translate(req Request) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return Result{}, ErrNotInitialized
	}

	if strings.TrimSpace(req.Text) == "" {
		return Result{}, nil
	}

	srcToken, err := t.langs.TokenID(req.SourceLang)
	if err != nil {
		return Result{}, err
	}
	tgtToken, err := t.langs.TokenID(req.TargetLang)
	if err != nil {
		return Result{}, err
	}

	key := cacheKey(req.SourceLang, req.TargetLang, req.Text)
	if text, ok := t.cache.get(key); ok {
		return Result{Text: text, FromCache: true}, nil
	}

	// Encoder input: source language token, the text's model IDs, then
	// end-of-sequence.
	raw := t.tok.Encode(req.Text)
	ids := t.tok.ToModelIDs(raw)
	input := make([]int64, 0, len(ids)+2)
	input = append(input, srcToken)
	input = append(input, ids...)
	input = append(input, tokenizer.EOSModelID)

	output, err := t.engine.Generate(input, tgtToken)
	if err != nil {
		return Result{}, err
	}

	text := t.tok.Decode(t.tok.FromModelIDs(output, t.langs.IsLanguageToken))
	t.cache.put(key, text)
	return Result{Text: text}, nil
}

// Release closes the engine sessions and drops the loaded model. The
// Translator can be re-initialized afterwards. Safe to call repeatedly.
func (t *Translator) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return nil
	}

	err := t.engine.Close()
	t.vocabulary = nil
	t.tok = nil
	t.langs = nil
	t.engine = nil
	t.cache = nil
	t.initialized = false
	return err
}

// Initialized reports whether a model is loaded.
func (t *Translator) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

func cacheKey(src, tgt, text string) string {
	return src + "|" + tgt + "|" + text
}
