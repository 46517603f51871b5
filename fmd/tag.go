package fmd

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	r255 "github.com/gtank/ristretto255"
	"golang.org/x/crypto/sha3"
)

// tagEncodedLen is the fixed wire size of a compressed Tag: one Ristretto255
// element (32 bytes), one Ristretto255 scalar (32 bytes), and the packed
// 24-bit hint vector (3 bytes).
const tagEncodedLen = 32 + 32 + 3

// Tag is the opaque value a sender attaches to a ciphertext so that the
// holder of a matching DetectionKey can find it in the relay's stream.
// Tag does not carry cryptographic authentication on its own: its only
// job is addressing, per the hybrid encryption contract in package hybrid.
type Tag struct {
	u    *r255.Element
	y    *r255.Scalar
	bits uint32
	n    int
}

// GenerateTag stamps a fresh, randomized Tag addressed to this TaggingKey.
// A holder of DetectionKey(n) derived from the same RootSecret accepts it
// with probability 1; any other DetectionKey(n) accepts it with
// probability 2^-n.
func (tk *TaggingKey) GenerateTag() (*Tag, error) {
	uniform := make([]byte, 128)
	if _, err := rand.Read(uniform); err != nil {
		return nil, err
	}

	r := r255.NewScalar().FromUniformBytes(uniform[0:64])
	z := r255.NewScalar().FromUniformBytes(uniform[64:128])
	u := r255.NewElement().ScalarBaseMult(r)
	w := r255.NewElement().ScalarBaseMult(z)

	var bits uint32
	for i, h := range tk.elements {
		rh := r255.NewElement().ScalarMult(r, h)
		c := hashG3ToBit(u, rh, w) ^ 1
		if c == 1 {
			bits |= 1 << uint(i)
		}
	}

	n := len(tk.elements)
	m := hashBitsToScalar(u, bits, n)

	y := r255.NewScalar().Invert(r)
	y.Multiply(y, z.Subtract(z, m))

	return &Tag{u: u, y: y, bits: bits, n: n}, nil
}

// Test reports whether flag t is accepted by detection key dk: true with
// certainty if t was generated from the TaggingKey dk was extracted from,
// and with probability 2^-dk.Len() otherwise.
func (dk *DetectionKey) Test(t *Tag) bool {
	if t == nil || t.u == nil || t.y == nil {
		return false
	}
	if t.u.Equal(r255.NewElement()) == 1 || t.y.Equal(r255.NewScalar()) == 1 {
		return false
	}

	m := hashBitsToScalar(t.u, t.bits, t.n)

	scalars := []*r255.Scalar{m, t.y}
	elements := []*r255.Element{r255.NewElement().Base(), t.u}
	w := r255.NewElement().MultiScalarMult(scalars, elements)

	var pass uint = 1
	for i, x := range dk.scalars {
		xu := r255.NewElement().ScalarMult(x, t.u)
		k := hashG3ToBit(t.u, xu, w)
		bit := (t.bits >> uint(i)) & 1
		pass &= k ^ uint(bit)
	}

	return pass == 1
}

// hashG3ToBit implements H: G^3 -> {0,1}, following the same construction
// gtank/gophertags uses: a SHA3-256 digest of three encoded group elements,
// reduced to its low bit.
func hashG3ToBit(a, b, c *r255.Element) uint {
	digest := sha3.New256()
	digest.Write(a.Encode(nil))
	digest.Write(b.Encode(nil))
	digest.Write(c.Encode(nil))
	return uint(digest.Sum(nil)[0] & 0x01)
}

// hashBitsToScalar hashes a group element together with a packed bit
// vector down to a uniform scalar.
func hashBitsToScalar(u *r255.Element, bits uint32, n int) *r255.Scalar {
	nBytes := (n + 7) / 8
	buf := u.Encode(nil)
	for i := 0; i < nBytes; i++ {
		buf = append(buf, byte(bits>>uint(8*i)))
	}
	digest := sha3.Sum512(buf)
	return r255.NewScalar().FromUniformBytes(digest[:])
}

// Compress produces the canonical fixed-size wire encoding of a Tag: used
// both for network transport and as the relay store's lookup key.
func (t *Tag) Compress() []byte {
	out := make([]byte, 0, tagEncodedLen)
	out = t.u.Encode(out)
	out = t.y.Encode(out)
	nBytes := tagEncodedLen - 64
	for i := 0; i < nBytes; i++ {
		out = append(out, byte(t.bits>>uint(8*i)))
	}
	return out
}

// DecompressTag parses the canonical wire encoding produced by Compress.
func DecompressTag(b []byte) (*Tag, error) {
	if len(b) != tagEncodedLen {
		return nil, ErrMalformedTag
	}

	u := r255.NewElement()
	if err := u.Decode(b[0:32]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTag, err)
	}
	y := r255.NewScalar()
	if err := y.Decode(b[32:64]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTag, err)
	}

	var bits uint32
	for i, byt := range b[64:] {
		bits |= uint32(byt) << uint(8*i)
	}

	return &Tag{u: u, y: y, bits: bits, n: MaxDetectionKeyLength}, nil
}

// String renders the tag's compressed bytes as lowercase hex, matching
// the human-readable form the relay server echoes back in POST /new.
func (t *Tag) String() string {
	return hex.EncodeToString(t.Compress())
}

// MarshalJSON encodes the tag as a base64 string, the canonical wire form
// shared between the relay client and server. The value receiver keeps
// that form when a Tag is held by value inside another struct or a map.
func (t Tag) MarshalJSON() ([]byte, error) {
	encoded := base64.StdEncoding.EncodeToString(t.Compress())
	return []byte(`"` + encoded + `"`), nil
}

// UnmarshalJSON decodes a tag from the base64 wire form produced by MarshalJSON.
func (t *Tag) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrMalformedTag
	}
	raw, err := base64.StdEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTag, err)
	}
	decoded, err := DecompressTag(raw)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
