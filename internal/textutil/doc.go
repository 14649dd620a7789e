// Package textutil provides the text processing behind species search:
// accent-insensitive folding, tokenization, term-frequency fingerprints with
// optional TF-IDF weighting, and cosine similarity.
//
// Tokenization folds case and diacritics, splits on anything that is not a
// letter or digit, and drops tokens shorter than three characters.
package textutil
