package testutil

import (
	"fmt"

	"github.com/offlingo/offlingo/internal/infer"
)

// Seq2SeqScript wires the three mock sessions of a translation model onto
// a MockRuntime so the inference engine deterministically produces a fixed
// token sequence: the encoder emits hidden states, the cache-free decoder
// seeds both cache sets, and the cached decoder emits one scripted token
// per step (end-of-sequence once the script runs out).
type Seq2SeqScript struct {
	rt        *MockRuntime
	VocabSize int
	Tokens    []int64
	EOSToken  int64

	// FailAtStep makes the cached decoder return StepErr on that step
	// (1-based) instead of output tensors.
	FailAtStep int
	StepErr    error

	// SeedCrossKey is the cross-attention key tensor emitted while
	// seeding; tests compare it against the cached decoder's inputs to
	// prove the fixed cache is passed through rather than rebuilt.
	SeedCrossKey infer.Tensor

	step int
}

// ScriptSeq2Seq registers scripted encoder, decoder and cached-decoder
// sessions on rt under the given paths. tokens are the IDs the cached
// decoder emits on successive steps.
func ScriptSeq2Seq(rt *MockRuntime, encoderPath, decoderPath, cachedPath string, vocabSize int, tokens []int64) *Seq2SeqScript {
	s := &Seq2SeqScript{
		rt:        rt,
		VocabSize: vocabSize,
		Tokens:    tokens,
		EOSToken:  2,
	}

	rt.Session(encoderPath).RunFunc = func(inputs map[string]infer.Tensor) (map[string]infer.Tensor, error) {
		ids, ok := inputs["input_ids"]
		if !ok {
			return nil, fmt.Errorf("encoder called without input_ids")
		}
		n := int64(len(ids.Ints()))
		return map[string]infer.Tensor{
			"last_hidden_state": rt.Emit(make([]float32, n*4), []int64{1, n, 4}),
		}, nil
	}

	rt.Session(decoderPath).RunFunc = func(inputs map[string]infer.Tensor) (map[string]infer.Tensor, error) {
		if _, ok := inputs["encoder_hidden_states"]; !ok {
			return nil, fmt.Errorf("first decode called without encoder_hidden_states")
		}
		// The cache-free decoder runs once per generation call, so this
		// marks the start of a fresh decode loop.
		s.step = 0
		s.SeedCrossKey = rt.Emit([]float32{1}, []int64{1, 1, 1, 1})
		return map[string]infer.Tensor{
			"logits":                  s.logits(s.EOSToken),
			"present.0.encoder.key":   s.SeedCrossKey,
			"present.0.encoder.value": rt.Emit([]float32{2}, []int64{1, 1, 1, 1}),
			"present.0.decoder.key":   rt.Emit([]float32{3}, []int64{1, 1, 1, 1}),
			"present.0.decoder.value": rt.Emit([]float32{4}, []int64{1, 1, 1, 1}),
		}, nil
	}

	rt.Session(cachedPath).RunFunc = func(inputs map[string]infer.Tensor) (map[string]infer.Tensor, error) {
		s.step++
		if s.FailAtStep > 0 && s.step == s.FailAtStep {
			return nil, s.StepErr
		}
		if _, ok := inputs["past_key_values.0.decoder.key"]; !ok {
			return nil, fmt.Errorf("cached decode step %d called without self-attention cache", s.step)
		}
		next := s.EOSToken
		if s.step <= len(s.Tokens) {
			next = s.Tokens[s.step-1]
		}
		return map[string]infer.Tensor{
			"logits":                  s.logits(next),
			"present.0.decoder.key":   rt.Emit([]float32{float32(s.step)}, []int64{1, 1, 1, 1}),
			"present.0.decoder.value": rt.Emit([]float32{float32(s.step)}, []int64{1, 1, 1, 1}),
		}, nil
	}

	return s
}

// Steps reports how many cached-decoder steps ran in the latest
// generation call.
func (s *Seq2SeqScript) Steps() int { return s.step }

// logits builds a one-hot logits tensor favoring the given token.
func (s *Seq2SeqScript) logits(token int64) infer.Tensor {
	scores := make([]float32, s.VocabSize)
	for i := range scores {
		scores[i] = -10
	}
	scores[token] = 10
	return s.rt.Emit(scores, []int64{1, 1, int64(s.VocabSize)})
}
