// Package translation is the facade over the whole pipeline: vocabulary,
// tokenizer, language registry, inference engine and result cache. One
// Translator owns one loaded model; its Translate method is safe for
// concurrent use because calls are serialized over the single engine.
package translation
