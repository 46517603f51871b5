package profile

import (
	"bytes"
	"encoding/base32"
	"encoding/gob"
	"fmt"
	"strings"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/sirupsen/logrus"
)

// keySetEncoding is the unpadded, lowercase RFC4648 base32 alphabet used
// to share a KeySet as a short copy-pasteable string.
var keySetEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// KeySet is the public capability bundle a profile shares with friends so
// they can tag and encrypt messages to it: a TaggingKey for addressing
// and a PublicKey for the hybrid encryption layer.
type KeySet struct {
	ProfileName string
	TaggingKey  fmd.TaggingKey
	PublicKey   hybrid.PublicKey
}

// KeySet returns this profile's shareable key material.
func (p *Profile) KeySet() KeySet {
	return KeySet{
		ProfileName: p.Name,
		TaggingKey:  *p.RootSecret.TaggingKey(),
		PublicKey:   *p.PrivateKey.PublicKey(),
	}
}

// Encode serializes a KeySet to a compact gob encoding and base32-encodes
// it without padding, lowercased, for sharing out of band.
func (ks KeySet) Encode() (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ks); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedKeySet, err)
	}
	return strings.ToLower(keySetEncoding.EncodeToString(buf.Bytes())), nil
}

// DecodeKeySet parses the encoding produced by KeySet.Encode.
func DecodeKeySet(encoded string) (*KeySet, error) {
	raw, err := keySetEncoding.DecodeString(strings.ToUpper(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKeySet, err)
	}

	var ks KeySet
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&ks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKeySet, err)
	}
	return &ks, nil
}

// ImportTaggingKey decodes a base32 KeySet and inserts it into the
// contact book under its ProfileName. A duplicate name is rejected with
// a warning and leaves the existing entry untouched.
func (p *Profile) ImportTaggingKey(encoded string) error {
	logger := logrus.WithFields(logrus.Fields{
		"function": "ImportTaggingKey",
		"package":  "profile",
		"profile":  p.Name,
	})

	ks, err := DecodeKeySet(encoded)
	if err != nil {
		logger.WithError(err).Error("failed to decode key set")
		return err
	}

	if _, exists := p.Contacts[ks.ProfileName]; exists {
		logger.WithField("contact", ks.ProfileName).Warn("contact already known, ignoring import")
		return ErrDuplicateContact
	}

	p.Contacts[ks.ProfileName] = *ks
	logger.WithField("contact", ks.ProfileName).Info("imported contact tagging key")
	return nil
}
