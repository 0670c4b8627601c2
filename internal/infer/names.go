package infer

import "strings"

// Tensor names follow the exported-model convention: decoder outputs are
// "present.{layer}.{encoder|decoder}.{key|value}" and are fed back as
// "past_key_values.{layer}.{encoder|decoder}.{key|value}".
const (
	inputIDsName      = "input_ids"
	attentionMaskName = "attention_mask"
	encoderMaskName   = "encoder_attention_mask"
	hiddenStatesName  = "encoder_hidden_states"
	lastHiddenName    = "last_hidden_state"
	logitsName        = "logits"

	presentPrefix = "present."
	pastPrefix    = "past_key_values."
)

func isPresentOutput(name string) bool {
	return strings.HasPrefix(name, presentPrefix)
}

// isCrossAttentionCache matches cache tensors derived from the encoder
// output. They are computed once and never change across decode steps.
func isCrossAttentionCache(name string) bool {
	return isPresentOutput(name) && strings.Contains(name, ".encoder.")
}

// isSelfAttentionCache matches cache tensors derived from generated
// tokens. They are superseded on every decode step.
func isSelfAttentionCache(name string) bool {
	return isPresentOutput(name) && strings.Contains(name, ".decoder.")
}

// presentToPast maps an output cache name to the input name the next step
// expects.
func presentToPast(name string) string {
	return pastPrefix + strings.TrimPrefix(name, presentPrefix)
}
