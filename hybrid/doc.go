// Package hybrid implements hybrid encryption bound to an fmd.Tag: a
// recipient's PublicKey encrypts a message so that only the matching
// PrivateKey can open it, while the Tag used for addressing plays no role
// in authentication. Decryption authenticity comes entirely from the
// AEAD seal, matching niwl's original design: fuzzy message detection
// tells a relay who *might* want a ciphertext, this package is what
// proves who actually can read it.
package hybrid
