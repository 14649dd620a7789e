// Package language normalizes the result-language setting sent to Pl@ntNet.
//
// The service expects a bare ISO 639-1 code. Users write "en", "eng", "pt-BR"
// or "Portuguese"; Normalize folds all of these to the two-letter base and
// DisplayName renders it back in English for status output.
package language
