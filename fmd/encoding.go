package fmd

import (
	"encoding/base64"
	"fmt"

	r255 "github.com/gtank/ristretto255"
)

// MarshalBinary implements encoding.BinaryMarshaler so a Tag can be carried
// inside a gob-encoded KeySet, in addition to its JSON wire form.
func (t *Tag) MarshalBinary() ([]byte, error) { return t.Compress(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Tag) UnmarshalBinary(data []byte) error {
	decoded, err := DecompressTag(data)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// Compress encodes a TaggingKey as the concatenation of its elements, each
// in Ristretto255's canonical 32-byte encoding.
func (tk *TaggingKey) Compress() []byte {
	out := make([]byte, 0, len(tk.elements)*32)
	for _, e := range tk.elements {
		out = e.Encode(out)
	}
	return out
}

// DecompressTaggingKey parses the encoding produced by Compress.
func DecompressTaggingKey(b []byte) (*TaggingKey, error) {
	if len(b) == 0 || len(b)%32 != 0 {
		return nil, ErrMalformedTaggingKey
	}
	n := len(b) / 32
	elements := make([]*r255.Element, n)
	for i := 0; i < n; i++ {
		elements[i] = r255.NewElement()
		if err := elements[i].Decode(b[i*32 : (i+1)*32]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTaggingKey, err)
		}
	}
	return &TaggingKey{elements: elements}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (tk *TaggingKey) MarshalBinary() ([]byte, error) { return tk.Compress(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (tk *TaggingKey) UnmarshalBinary(data []byte) error {
	decoded, err := DecompressTaggingKey(data)
	if err != nil {
		return err
	}
	*tk = *decoded
	return nil
}

// MarshalJSON encodes a TaggingKey as a base64 string.
func (tk TaggingKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + base64.StdEncoding.EncodeToString(tk.Compress()) + `"`), nil
}

// UnmarshalJSON decodes a TaggingKey from the form MarshalJSON produces.
func (tk *TaggingKey) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrMalformedTaggingKey
	}
	raw, err := base64.StdEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTaggingKey, err)
	}
	return tk.UnmarshalBinary(raw)
}

// Compress encodes a DetectionKey as the concatenation of its scalars.
func (dk *DetectionKey) Compress() []byte {
	out := make([]byte, 0, len(dk.scalars)*32)
	for _, s := range dk.scalars {
		out = s.Encode(out)
	}
	return out
}

// DecompressDetectionKey parses the encoding produced by Compress.
func DecompressDetectionKey(b []byte) (*DetectionKey, error) {
	if len(b) == 0 || len(b)%32 != 0 {
		return nil, ErrMalformedTaggingKey
	}
	n := len(b) / 32
	scalars := make([]*r255.Scalar, n)
	for i := 0; i < n; i++ {
		scalars[i] = r255.NewScalar()
		if err := scalars[i].Decode(b[i*32 : (i+1)*32]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTaggingKey, err)
		}
	}
	return &DetectionKey{scalars: scalars}, nil
}

// MarshalJSON encodes a DetectionKey as a base64 string.
func (dk DetectionKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + base64.StdEncoding.EncodeToString(dk.Compress()) + `"`), nil
}

// UnmarshalJSON decodes a DetectionKey from the form MarshalJSON produces.
func (dk *DetectionKey) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrMalformedTaggingKey
	}
	raw, err := base64.StdEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTaggingKey, err)
	}
	decoded, err := DecompressDetectionKey(raw)
	if err != nil {
		return err
	}
	*dk = *decoded
	return nil
}

// MarshalJSON encodes a RootSecret as a base64 string of its concatenated
// scalars, for profile persistence. A RootSecret never crosses the network.
func (rs *RootSecret) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, len(rs.scalars)*32)
	for _, s := range rs.scalars {
		out = s.Encode(out)
	}
	return []byte(`"` + base64.StdEncoding.EncodeToString(out) + `"`), nil
}

// UnmarshalJSON decodes a RootSecret from the form MarshalJSON produces.
func (rs *RootSecret) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrMalformedTaggingKey
	}
	raw, err := base64.StdEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTaggingKey, err)
	}
	if len(raw) != MaxDetectionKeyLength*32 {
		return ErrMalformedTaggingKey
	}
	scalars := make([]*r255.Scalar, MaxDetectionKeyLength)
	points := make([]*r255.Element, MaxDetectionKeyLength)
	for i := 0; i < MaxDetectionKeyLength; i++ {
		scalars[i] = r255.NewScalar()
		if err := scalars[i].Decode(raw[i*32 : (i+1)*32]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedTaggingKey, err)
		}
		points[i] = r255.NewElement().ScalarBaseMult(scalars[i])
	}
	rs.scalars = scalars
	rs.points = points
	return nil
}
