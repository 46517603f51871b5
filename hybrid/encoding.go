package hybrid

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gtank/niwl/fmd"
	r255 "github.com/gtank/ristretto255"
)

// MarshalBinary implements encoding.BinaryMarshaler, letting a PublicKey
// ride inside a gob-encoded KeySet.
func (pk *PublicKey) MarshalBinary() ([]byte, error) { return pk.Compress(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	decoded, err := DecompressPublicKey(data)
	if err != nil {
		return err
	}
	*pk = *decoded
	return nil
}

// MarshalJSON encodes a PublicKey as a base64 string.
func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + base64.StdEncoding.EncodeToString(pk.Compress()) + `"`), nil
}

// UnmarshalJSON decodes a PublicKey from the form MarshalJSON produces.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	raw, err := unquoteBase64(data)
	if err != nil {
		return err
	}
	return pk.UnmarshalBinary(raw)
}

// MarshalJSON encodes a PrivateKey as a base64 string, used only for
// profile persistence; a PrivateKey never crosses the network.
func (sk *PrivateKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + base64.StdEncoding.EncodeToString(sk.Compress()) + `"`), nil
}

// UnmarshalJSON decodes a PrivateKey from the form MarshalJSON produces.
func (sk *PrivateKey) UnmarshalJSON(data []byte) error {
	raw, err := unquoteBase64(data)
	if err != nil {
		return err
	}
	decoded, err := DecompressPrivateKey(raw)
	if err != nil {
		return err
	}
	*sk = *decoded
	return nil
}

func unquoteBase64(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return nil, ErrMalformedKey
	}
	raw, err := base64.StdEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return raw, nil
}

// wireCiphertext is the on-the-wire shape of a TaggedCiphertext: the
// unexported nonce and ciphertext fields are not directly visible to
// encoding/json, so MarshalJSON/UnmarshalJSON bridge through this type.
type wireCiphertext struct {
	Tag        fmd.Tag `json:"tag"`
	Nonce      string  `json:"nonce"`
	Ciphertext string  `json:"ciphertext"`
}

// MarshalJSON encodes a TaggedCiphertext for transport between the relay
// client and server.
func (ct TaggedCiphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCiphertext{
		Tag:        ct.Tag,
		Nonce:      base64.StdEncoding.EncodeToString(ct.nonce.Encode(nil)),
		Ciphertext: base64.StdEncoding.EncodeToString(ct.ciphertext),
	})
}

// UnmarshalJSON decodes a TaggedCiphertext from the form MarshalJSON produces.
func (ct *TaggedCiphertext) UnmarshalJSON(data []byte) error {
	var wire wireCiphertext
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	nonceBytes, err := base64.StdEncoding.DecodeString(wire.Nonce)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	nonce := r255.NewElement()
	if err := nonce.Decode(nonceBytes); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wire.Ciphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	ct.Tag = wire.Tag
	ct.nonce = nonce
	ct.ciphertext = ciphertext
	return nil
}
