package mix

import "errors"

// ErrMalformedMessage indicates a decrypted plaintext parsed as neither
// a TaggedCiphertext forward nor a MixMessage. The caller must drop the
// message silently; surfacing a distinguishing error would give an
// adversary a decryption oracle.
var ErrMalformedMessage = errors.New("mix: payload is neither a forward nor a mix message")
