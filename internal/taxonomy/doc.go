// Package taxonomy holds the reference data behind identification: species
// records with their morphological traits, the trait vocabulary that supplies
// answer options, and the category keys that tie the two together.
//
// Species and vocabulary are loaded from JSON (or YAML) bundles into a Store,
// which is safe for concurrent reads and can be swapped wholesale by a Watcher
// when the files change. Trait values are free text; an empty value means the
// trait is not documented for that species. Overlaps implements the
// case-insensitive, bidirectional containment test every scorer shares.
package taxonomy
