package profile

import (
	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/sirupsen/logrus"
)

// Profile is a participant's complete keystore: long-term secrets, a
// contact book, the chosen detection-key length, and the cursor tracking
// how far into the relay's log this profile has already scanned.
type Profile struct {
	Name               string
	RootSecret         *fmd.RootSecret
	PrivateKey         *hybrid.PrivateKey
	Contacts           map[string]KeySet
	DetectionKeyLength int
	LastSeenTag        *fmd.Tag

	// SavePath, when non-empty, is the file DetectTags writes updated
	// state to after advancing LastSeenTag. Set by Load, or by a caller
	// that wants a fresh profile to persist itself automatically.
	SavePath string `json:"-"`
}

// New creates a fresh Profile with a randomly generated RootSecret and
// hybrid PrivateKey. detectionKeyLength fixes the false-positive rate
// (2^-ell) this profile will use for every future detect round; it is
// not mutable afterward.
func New(name string, detectionKeyLength int) (*Profile, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "New",
		"package":  "profile",
		"name":     name,
	})

	if detectionKeyLength < 1 || detectionKeyLength > fmd.MaxDetectionKeyLength {
		detectionKeyLength = fmd.MaxDetectionKeyLength
	}

	rootSecret, err := fmd.GenerateRootSecret()
	if err != nil {
		logger.WithError(err).Error("failed to generate root secret")
		return nil, err
	}

	privateKey, err := hybrid.GeneratePrivateKey()
	if err != nil {
		logger.WithError(err).Error("failed to generate hybrid private key")
		return nil, err
	}

	logger.Info("created new profile")

	return &Profile{
		Name:               name,
		RootSecret:         rootSecret,
		PrivateKey:         privateKey,
		Contacts:           make(map[string]KeySet),
		DetectionKeyLength: detectionKeyLength,
	}, nil
}

// GenerateTag produces a fresh tag addressed to the named contact's
// TaggingKey.
func (p *Profile) GenerateTag(name string) (fmd.Tag, error) {
	contact, ok := p.Contacts[name]
	if !ok {
		return fmd.Tag{}, ErrNoKnownContact
	}
	tag, err := contact.TaggingKey.GenerateTag()
	if err != nil {
		return fmd.Tag{}, err
	}
	return *tag, nil
}

// UpdatePreviouslySeenTag advances the profile's fetch cursor. This must
// only ever move forward in the relay's insertion order; callers
// (DetectTags) are responsible for passing the latest tag of a batch,
// never an earlier one.
func (p *Profile) UpdatePreviouslySeenTag(tag fmd.Tag) {
	p.LastSeenTag = &tag
}
