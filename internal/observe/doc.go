// Package observe ranks every known species against the traits an observer
// has selected. It is the free, offline half of identification: no images,
// no network, just textual overlap between answers and reference records.
package observe
