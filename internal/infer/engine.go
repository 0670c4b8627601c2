package infer

import (
	"errors"
	"fmt"
)

// State tracks the engine's position in its lifecycle and, during a call,
// in the encode/decode pipeline.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateEncoding
	StateFirstDecode
	StateDecoding
	StateDone
)

// ErrNotReady is returned when Generate is called before Open or after
// Close.
var ErrNotReady = errors.New("inference engine not ready")

// InferenceError wraps a runtime failure with enough position information
// to diagnose it: the pipeline stage and, during the decode loop, the step
// number.
type InferenceError struct {
	Stage string
	Step  int
	Err   error
}

func (e *InferenceError) Error() string {
	if e.Step > 0 {
		return fmt.Sprintf("inference failed at %s step %d: %v", e.Stage, e.Step, e.Err)
	}
	return fmt.Sprintf("inference failed at %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Config bounds the decode loop.
type Config struct {
	// MaxSteps caps the number of decode steps; the loop terminates here
	// even if the model never emits end-of-sequence.
	MaxSteps int
	// EOSTokenID is the end-of-sequence token in model numbering.
	EOSTokenID int64
}

// DefaultConfig matches the shipped model family.
func DefaultConfig() Config {
	return Config{MaxSteps: 256, EOSTokenID: 2}
}

// Engine drives the three-session encoder-decoder pipeline: the encoder
// runs once per call, the cache-free decoder runs once to seed both cache
// sets, and the cached decoder runs once per generated token.
//
// The engine is not safe for concurrent Generate calls: each call owns the
// encoder hidden states and both cache sets exclusively. Callers serialize
// access (the facade holds a mutex).
type Engine struct {
	rt  Runtime
	cfg Config

	encoder       Session
	decoder       Session // cache-free, first step only
	decoderCached Session // every subsequent step

	state State
}

// New creates an engine bound to a runtime. Sessions are opened separately
// so initialization failures can tear down cleanly.
func New(rt Runtime, cfg Config) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultConfig().MaxSteps
	}
	return &Engine{rt: rt, cfg: cfg, state: StateUninitialized}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Open loads the three network sessions. It is all-or-nothing: if any
// session fails to open, the ones already opened are closed and the engine
// stays uninitialized. Calling Open on a ready engine is a no-op.
func (e *Engine) Open(encoderPath, decoderPath, cachedDecoderPath string) error {
	if e.state == StateReady {
		return nil
	}

	encoder, err := e.rt.OpenSession(encoderPath)
	if err != nil {
		return fmt.Errorf("opening encoder session: %w", err)
	}
	decoder, err := e.rt.OpenSession(decoderPath)
	if err != nil {
		encoder.Close()
		return fmt.Errorf("opening decoder session: %w", err)
	}
	cached, err := e.rt.OpenSession(cachedDecoderPath)
	if err != nil {
		encoder.Close()
		decoder.Close()
		return fmt.Errorf("opening cached decoder session: %w", err)
	}

	e.encoder = encoder
	e.decoder = decoder
	e.decoderCached = cached
	e.state = StateReady
	return nil
}

// Close releases all sessions. Safe to call repeatedly.
func (e *Engine) Close() error {
	var firstErr error
	for _, s := range []*Session{&e.encoder, &e.decoder, &e.decoderCached} {
		if *s != nil {
			if err := (*s).Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			*s = nil
		}
	}
	e.state = StateUninitialized
	return firstErr
}

// Generate runs one full translation call: encode the input IDs, seed the
// caches with the cache-free decoder, then greedily decode one token per
// step until end-of-sequence or the step cap. The first output token is
// forced to forcedToken (the target-language token); the returned sequence
// includes it.
//
// Whatever happens, every cache tensor is released before Generate
// returns, and the engine is back in StateReady so the next call can
// proceed.
func (e *Engine) Generate(inputIDs []int64, forcedToken int64) (_ []int64, err error) {
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	defer func() { e.state = StateReady }()

	// scratch holds the call-scoped tensors: model inputs, encoder
	// hidden states, attention mask.
	scratch := newGeneration(e.rt)
	defer scratch.release()

	// Encoding.
	e.state = StateEncoding
	hidden, mask, err := e.runEncoder(inputIDs, scratch)
	if err != nil {
		return nil, err
	}

	// FirstDecode: seed both cache sets. The logits of this step are
	// discarded since the first output token is forced.
	e.state = StateFirstDecode
	encoderKV, decoderKV, err := e.seedCaches(hidden, mask, scratch)
	if err != nil {
		return nil, err
	}
	defer encoderKV.release()
	defer func() { decoderKV.release() }()

	// Decoding loop.
	out := []int64{forcedToken}
	current := forcedToken
	for step := 1; step <= e.cfg.MaxSteps; step++ {
		e.state = StateDecoding
		next, nextKV, err := e.decodeStep(step, current, mask, encoderKV, decoderKV)
		if err != nil {
			return nil, err
		}

		// The superseded self-attention cache is dead the moment the
		// new one exists. Leaking it here would leak once per token.
		decoderKV.release()
		decoderKV = nextKV

		if next == e.cfg.EOSTokenID {
			break
		}
		out = append(out, next)
		current = next
	}

	e.state = StateDone
	return out, nil
}

// runEncoder tokenizes nothing: it takes ready model IDs, runs the encoder
// once and returns the hidden states plus the attention mask used, both
// owned by scratch.
func (e *Engine) runEncoder(inputIDs []int64, scratch *generation) (hidden, mask Tensor, err error) {
	n := int64(len(inputIDs))

	ids, err := e.rt.NewIntTensor(inputIDs, []int64{1, n})
	if err != nil {
		return nil, nil, &InferenceError{Stage: "encode", Err: err}
	}
	scratch.add(inputIDsName, ids)

	ones := make([]int64, n)
	for i := range ones {
		ones[i] = 1
	}
	mask, err = e.rt.NewIntTensor(ones, []int64{1, n})
	if err != nil {
		return nil, nil, &InferenceError{Stage: "encode", Err: err}
	}
	scratch.add(attentionMaskName, mask)

	outputs, err := e.encoder.Run(map[string]Tensor{
		inputIDsName:      ids,
		attentionMaskName: mask,
	})
	if err != nil {
		return nil, nil, &InferenceError{Stage: "encode", Err: err}
	}
	for name, t := range outputs {
		scratch.add(name, t)
	}

	hidden, ok := scratch.tensors[lastHiddenName]
	if !ok {
		return nil, nil, &InferenceError{Stage: "encode", Err: fmt.Errorf("encoder produced no %q tensor", lastHiddenName)}
	}
	return hidden, mask, nil
}

// seedCaches runs the cache-free decoder on the end-of-sequence token and
// splits its cache outputs: the cross-attention tensors become the fixed
// encoder cache, the self-attention tensors the initial decoder cache.
func (e *Engine) seedCaches(hidden, mask Tensor, scratch *generation) (encoderKV, decoderKV *generation, err error) {
	bos, err := e.rt.NewIntTensor([]int64{e.cfg.EOSTokenID}, []int64{1, 1})
	if err != nil {
		return nil, nil, &InferenceError{Stage: "first decode", Err: err}
	}
	scratch.add("first_decode_input", bos)

	outputs, err := e.decoder.Run(map[string]Tensor{
		inputIDsName:     bos,
		hiddenStatesName: hidden,
		encoderMaskName:  mask,
	})
	if err != nil {
		return nil, nil, &InferenceError{Stage: "first decode", Err: err}
	}

	encoderKV = newGeneration(e.rt)
	decoderKV = newGeneration(e.rt)
	for name, t := range outputs {
		switch {
		case isCrossAttentionCache(name):
			encoderKV.add(presentToPast(name), t)
		case isSelfAttentionCache(name):
			decoderKV.add(presentToPast(name), t)
		default:
			// First-step logits included: the first token is forced.
			e.rt.ReleaseTensor(t)
		}
	}

	if decoderKV.len() == 0 || encoderKV.len() == 0 {
		encoderKV.release()
		decoderKV.release()
		return nil, nil, &InferenceError{
			Stage: "first decode",
			Err:   errors.New("decoder produced no cache tensors"),
		}
	}
	return encoderKV, decoderKV, nil
}

// decodeStep runs the cached decoder for one token and returns the argmax
// token plus the new self-attention cache. The cross-attention cache is
// passed through untouched; it is never re-extracted.
func (e *Engine) decodeStep(step int, current int64, mask Tensor, encoderKV, decoderKV *generation) (int64, *generation, error) {
	stepScope := newGeneration(e.rt)
	defer stepScope.release()

	tok, err := e.rt.NewIntTensor([]int64{current}, []int64{1, 1})
	if err != nil {
		return 0, nil, &InferenceError{Stage: "decode", Step: step, Err: err}
	}
	stepScope.add(inputIDsName, tok)

	inputs := map[string]Tensor{
		inputIDsName:    tok,
		encoderMaskName: mask,
	}
	encoderKV.copyInto(inputs)
	decoderKV.copyInto(inputs)

	outputs, err := e.decoderCached.Run(inputs)
	if err != nil {
		return 0, nil, &InferenceError{Stage: "decode", Step: step, Err: err}
	}

	nextKV := newGeneration(e.rt)
	var logits Tensor
	for name, t := range outputs {
		switch {
		case name == logitsName:
			logits = t
			stepScope.add(name, t)
		case isSelfAttentionCache(name):
			nextKV.add(presentToPast(name), t)
		default:
			// Re-emitted cross-attention tensors are duplicates of the
			// fixed encoder cache; drop them immediately.
			stepScope.add(name, t)
		}
	}

	if logits == nil {
		nextKV.release()
		return 0, nil, &InferenceError{Stage: "decode", Step: step, Err: errors.New("missing logits tensor")}
	}
	if nextKV.len() == 0 {
		return 0, nil, &InferenceError{Stage: "decode", Step: step, Err: errors.New("missing self-attention cache tensors")}
	}
	scores := logits.Floats()
	if len(scores) == 0 {
		nextKV.release()
		return 0, nil, &InferenceError{Stage: "decode", Step: step, Err: errors.New("empty logits tensor")}
	}

	return argmax(scores), nextKV, nil
}

// argmax returns the index of the first maximum, so ties break toward the
// lowest token ID.
func argmax(values []float32) int64 {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return int64(best)
}
