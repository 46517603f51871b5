// Package fmd implements fuzzy message detection: a recipient's long-term
// secret derives a TaggingKey that anyone can use to stamp a ciphertext for
// them, and a DetectionKey that a semi-trusted party can use to filter a
// stream of tags for "probably addressed to this recipient" with a tunable
// false-positive rate of 2^-n.
//
// The construction follows Beck, Len, Lewi, and Nizic's fuzzy message
// detection scheme over the Ristretto255 prime-order group, the same
// construction implemented by the Rust fuzzytags crate and its Go port
// gtank/gophertags.
package fmd

// MaxDetectionKeyLength is the maximum false-positive exponent n in 2^-n,
// and the fixed width of every TaggingKey and Tag produced by this package.
const MaxDetectionKeyLength = 24
