package hybrid

import (
	"crypto/rand"

	r255 "github.com/gtank/ristretto255"
	"github.com/sirupsen/logrus"
)

// PrivateKey is a profile's long-term hybrid-encryption secret: a
// Ristretto255 scalar.
type PrivateKey struct {
	scalar *r255.Scalar
}

// PublicKey is the Ristretto255 element base·PrivateKey, freely shareable.
type PublicKey struct {
	element *r255.Element
}

// GeneratePrivateKey samples a fresh PrivateKey from the OS CSPRNG.
func GeneratePrivateKey() (*PrivateKey, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "GeneratePrivateKey",
		"package":  "hybrid",
	})

	uniform := make([]byte, 64)
	if _, err := rand.Read(uniform); err != nil {
		logger.WithError(err).Error("failed to sample private key entropy")
		return nil, err
	}

	sk := &PrivateKey{scalar: r255.NewScalar().FromUniformBytes(uniform)}
	logger.Debug("generated hybrid private key")
	return sk, nil
}

// PublicKey derives the public key corresponding to sk.
func (sk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{element: r255.NewElement().ScalarBaseMult(sk.scalar)}
}

// Compress encodes the private key's scalar in its canonical 32-byte form.
func (sk *PrivateKey) Compress() []byte { return sk.scalar.Encode(nil) }

// DecompressPrivateKey parses the encoding produced by Compress.
func DecompressPrivateKey(b []byte) (*PrivateKey, error) {
	s := r255.NewScalar()
	if err := s.Decode(b); err != nil {
		return nil, ErrMalformedKey
	}
	return &PrivateKey{scalar: s}, nil
}

// Compress encodes the public key's element in its canonical 32-byte form.
func (pk *PublicKey) Compress() []byte { return pk.element.Encode(nil) }

// DecompressPublicKey parses the encoding produced by Compress.
func DecompressPublicKey(b []byte) (*PublicKey, error) {
	e := r255.NewElement()
	if err := e.Decode(b); err != nil {
		return nil, ErrMalformedKey
	}
	return &PublicKey{element: e}, nil
}
