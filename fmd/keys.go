package fmd

import (
	"crypto/rand"

	r255 "github.com/gtank/ristretto255"
	"github.com/sirupsen/logrus"
)

// RootSecret is the long-term secret a profile derives all tagging and
// detection capability from. It is a vector of MaxDetectionKeyLength
// independently random Ristretto255 scalars, mirroring gophertags.SecretKey.
type RootSecret struct {
	scalars []*r255.Scalar
	points  []*r255.Element
}

// GenerateRootSecret samples a fresh RootSecret from the OS CSPRNG.
func GenerateRootSecret() (*RootSecret, error) {
	rs := &RootSecret{
		scalars: make([]*r255.Scalar, MaxDetectionKeyLength),
		points:  make([]*r255.Element, MaxDetectionKeyLength),
	}

	uniform := make([]byte, 64)
	for i := 0; i < MaxDetectionKeyLength; i++ {
		if _, err := rand.Read(uniform); err != nil {
			logrus.WithFields(logrus.Fields{
				"package": "fmd",
				"error":   err.Error(),
			}).Error("failed to sample root secret entropy")
			return nil, err
		}
		rs.scalars[i] = r255.NewScalar().FromUniformBytes(uniform)
		rs.points[i] = r255.NewElement().ScalarBaseMult(rs.scalars[i])
	}
	return rs, nil
}

// TaggingKey returns the public TaggingKey derived from this RootSecret.
// TaggingKeys are freely shareable; they let a correspondent stamp a tag
// the holder can later detect, but reveal nothing about which tag bit
// positions the holder will actually check.
func (rs *RootSecret) TaggingKey() *TaggingKey {
	points := make([]*r255.Element, len(rs.points))
	for i, p := range rs.points {
		// Round-trip through the wire encoding for an independent copy,
		// same pattern gophertags.SecretKey.PublicKey uses.
		points[i] = r255.NewElement()
		_ = points[i].Decode(p.Encode(nil))
	}
	return &TaggingKey{elements: points}
}

// ExtractDetectionKey produces a DetectionKey with false-positive rate
// 2^-n, 1 <= n <= MaxDetectionKeyLength. A larger n means fewer false
// positives and a stronger hint to the filtering party about who the
// recipient is.
func (rs *RootSecret) ExtractDetectionKey(n int) (*DetectionKey, error) {
	if n < 1 || n > MaxDetectionKeyLength {
		return nil, ErrInvalidDetectionKeyLength
	}
	scalars := make([]*r255.Scalar, n)
	for i := 0; i < n; i++ {
		scalars[i] = r255.NewScalar()
		_ = scalars[i].Decode(rs.scalars[i].Encode(nil))
	}
	return &DetectionKey{scalars: scalars}, nil
}

// TaggingKey is the public capability to stamp a Tag for a recipient.
type TaggingKey struct {
	elements []*r255.Element
}

// Len reports the number of bit positions this tagging key can stamp.
func (tk *TaggingKey) Len() int { return len(tk.elements) }

// DetectionKey is the capability to filter a stream of tags for "probably
// addressed to the RootSecret holder", with false-positive rate 2^-Len().
type DetectionKey struct {
	scalars []*r255.Scalar
}

// Len reports the detection key's false-positive exponent n in 2^-n.
func (dk *DetectionKey) Len() int { return len(dk.scalars) }
