package profile

import (
	"context"
	"encoding/json"

	"github.com/gtank/niwl/hybrid"
	"github.com/gtank/niwl/relay"
	"github.com/sirupsen/logrus"
)

// DetectedTags is the result of a detect round: every relay entry newer
// than the profile's cursor that passed its detection key's filter.
type DetectedTags = relay.FetchMessagesResponse

// TagAndSend generates a fresh tag from the named contact's TaggingKey,
// seals msg to the contact's PublicKey under that tag, and posts the
// result to the relay.
func (p *Profile) TagAndSend(ctx context.Context, client *relay.Client, name, msg string) (*relay.PostMessageResponse, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "TagAndSend",
		"package":  "profile",
		"profile":  p.Name,
		"contact":  name,
	})

	contact, ok := p.Contacts[name]
	if !ok {
		logger.Warn("no known contact")
		return nil, ErrNoKnownContact
	}

	tag, err := contact.TaggingKey.GenerateTag()
	if err != nil {
		return nil, err
	}

	ct, err := contact.PublicKey.Seal(*tag, msg)
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(ctx, *tag, *ct)
	if err != nil {
		logger.WithError(err).Error("failed to post message")
		return nil, err
	}
	return resp, nil
}

// TagAndMix seals msg to name as the inner layer, then wraps that sealed
// payload as the plaintext of an outer message tagged and sealed to the
// mix, so the relay and anyone watching it only ever sees a ciphertext
// addressed to the mix's own tagging key.
func (p *Profile) TagAndMix(ctx context.Context, client *relay.Client, mixName, name, msg string) (*relay.PostMessageResponse, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "TagAndMix",
		"package":  "profile",
		"profile":  p.Name,
		"mix":      mixName,
		"contact":  name,
	})

	contact, ok := p.Contacts[name]
	if !ok {
		logger.Warn("no known contact")
		return nil, ErrNoKnownContact
	}

	innerTag, err := contact.TaggingKey.GenerateTag()
	if err != nil {
		return nil, err
	}

	inner, err := contact.PublicKey.Seal(*innerTag, msg)
	if err != nil {
		return nil, err
	}

	innerJSON, err := json.Marshal(inner)
	if err != nil {
		return nil, err
	}

	return p.TagAndSend(ctx, client, mixName, string(innerJSON))
}

// SendToSelf seals msg to this profile's own public key under a tag
// generated from this profile's own tagging key, and posts it. Mix nodes
// use this for heartbeats and cover traffic: because the tag comes from
// the profile's own TaggingKey, the profile's own DetectionKey will later
// match it, and because it's sealed to the profile's own PublicKey, its
// own PrivateKey will decrypt it.
func (p *Profile) SendToSelf(ctx context.Context, client *relay.Client, msg string) (*relay.PostMessageResponse, error) {
	tag, err := p.RootSecret.TaggingKey().GenerateTag()
	if err != nil {
		return nil, err
	}

	ct, err := p.PrivateKey.PublicKey().Seal(*tag, msg)
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(ctx, *tag, *ct)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SendToSelf",
			"package":  "profile",
			"profile":  p.Name,
		}).WithError(err).Error("failed to post self-addressed message")
		return nil, err
	}
	return resp, nil
}

// Forward posts a pre-formed TaggedCiphertext as-is, used by a mix node
// to re-emit an ejected pool entry.
func (p *Profile) Forward(ctx context.Context, client *relay.Client, ct hybrid.TaggedCiphertext) (*relay.PostMessageResponse, error) {
	resp, err := client.Post(ctx, ct.Tag, ct)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Forward",
			"package":  "profile",
			"profile":  p.Name,
		}).WithError(err).Error("failed to forward ciphertext")
		return nil, err
	}
	return resp, nil
}

// DetectTags fetches every relay entry newer than LastSeenTag that
// passes this profile's detection key, derived fresh each round at the
// profile's fixed DetectionKeyLength.
func (p *Profile) DetectTags(ctx context.Context, client *relay.Client) (*DetectedTags, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "DetectTags",
		"package":  "profile",
		"profile":  p.Name,
	})

	dk, err := p.RootSecret.ExtractDetectionKey(p.DetectionKeyLength)
	if err != nil {
		return nil, err
	}

	resp, err := client.Fetch(ctx, p.LastSeenTag, *dk)
	if err != nil {
		logger.WithError(err).Error("failed to fetch tags")
		return nil, err
	}

	if len(resp.DetectedTags) > 0 {
		last := resp.DetectedTags[len(resp.DetectedTags)-1]
		p.UpdatePreviouslySeenTag(last.Tag)
	}

	if p.SavePath != "" {
		if err := p.Save(p.SavePath); err != nil {
			logger.WithError(err).Warn("failed to persist profile after detect round")
		}
	}

	logger.WithField("count", len(resp.DetectedTags)).Debug("detect round complete")
	return resp, nil
}
