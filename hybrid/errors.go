package hybrid

import "errors"

var (
	// ErrMalformedKey indicates a key could not be decoded from bytes.
	ErrMalformedKey = errors.New("hybrid: malformed key encoding")

	// ErrMessageTooLarge indicates the plaintext exceeds MaxMessageSize.
	ErrMessageTooLarge = errors.New("hybrid: message exceeds maximum size")

	// ErrMalformedCiphertext indicates a TaggedCiphertext failed to decode.
	ErrMalformedCiphertext = errors.New("hybrid: malformed ciphertext encoding")
)
