package hybrid

import (
	"crypto/rand"
	"unicode/utf8"

	"github.com/gtank/niwl/fmd"
	r255 "github.com/gtank/ristretto255"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/sha3"
)

// MaxMessageSize bounds the plaintext accepted by Seal, matching the
// teacher package's own guard against unbounded allocation.
const MaxMessageSize = 1024 * 1024

// TaggedCiphertext is the unit of exchange posted to a relay: a Tag for
// addressing, plus a nonce element and an AEAD-sealed payload.
type TaggedCiphertext struct {
	Tag        fmd.Tag `json:"tag"`
	nonce      *r255.Element
	ciphertext []byte
}

// Seal encrypts message to pk, addressed with tag: a fresh scalar r
// derives both the public nonce Z=r·G and, via r·Y, the symmetric key;
// the tag is folded into both derivations but authenticates nothing by
// itself.
func (pk *PublicKey) Seal(tag fmd.Tag, message string) (*TaggedCiphertext, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Seal",
		"package":  "hybrid",
	})

	if len(message) > MaxMessageSize {
		logger.WithField("message_size", len(message)).Error("message exceeds maximum allowed size")
		return nil, ErrMessageTooLarge
	}

	uniform := make([]byte, 64)
	if _, err := rand.Read(uniform); err != nil {
		logger.WithError(err).Error("failed to sample ephemeral scalar entropy")
		return nil, err
	}
	r := r255.NewScalar().FromUniformBytes(uniform)
	z := r255.NewElement().ScalarBaseMult(r)

	nonce := deriveNonce(z, &tag)
	key := deriveKey(r255.NewElement().ScalarMult(r, pk.element), &tag)

	sealed := secretbox.Seal(nil, []byte(message), &nonce, &key)

	logger.WithFields(logrus.Fields{
		"message_size":   len(message),
		"ciphertext_size": len(sealed),
	}).Debug("sealed message to tag")

	return &TaggedCiphertext{Tag: tag, nonce: z, ciphertext: sealed}, nil
}

// Open attempts to decrypt a TaggedCiphertext with sk. It returns
// (plaintext, true) on success, or ("", false) on AEAD authentication
// failure or non-UTF-8 plaintext. The two cases are deliberately
// indistinguishable, so a detection-key false positive can never be
// used as a decryption oracle.
func (sk *PrivateKey) Open(ct *TaggedCiphertext) (string, bool) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Open",
		"package":  "hybrid",
	})

	if ct == nil || ct.nonce == nil {
		return "", false
	}

	nonce := deriveNonce(ct.nonce, &ct.Tag)
	key := deriveKey(r255.NewElement().ScalarMult(sk.scalar, ct.nonce), &ct.Tag)

	plain, ok := secretbox.Open(nil, ct.ciphertext, &nonce, &key)
	if !ok {
		logger.Debug("authentication failed while opening tagged ciphertext")
		return "", false
	}

	if !utf8.Valid(plain) {
		logger.Debug("decrypted payload is not valid UTF-8")
		return "", false
	}

	return string(plain), true
}

func deriveNonce(z *r255.Element, tag *fmd.Tag) [24]byte {
	digest := sha3.New256()
	digest.Write(z.Encode(nil))
	digest.Write(tag.Compress())
	sum := digest.Sum(nil)

	var nonce [24]byte
	copy(nonce[:], sum[:24])
	return nonce
}

func deriveKey(secret *r255.Element, tag *fmd.Tag) [32]byte {
	digest := sha3.New256()
	digest.Write(secret.Encode(nil))
	digest.Write(tag.Compress())
	sum := digest.Sum(nil)

	var key [32]byte
	copy(key[:], sum)
	return key
}
