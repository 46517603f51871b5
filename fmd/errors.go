package fmd

import "errors"

var (
	// ErrInvalidDetectionKeyLength indicates a requested detection key
	// length was outside [1, MaxDetectionKeyLength].
	ErrInvalidDetectionKeyLength = errors.New("fmd: detection key length out of range")

	// ErrMalformedTag indicates a Tag could not be decompressed from bytes.
	ErrMalformedTag = errors.New("fmd: malformed tag encoding")

	// ErrMalformedTaggingKey indicates a TaggingKey could not be decoded.
	ErrMalformedTaggingKey = errors.New("fmd: malformed tagging key encoding")
)
