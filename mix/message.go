package mix

import (
	"encoding/json"
	"time"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
)

const (
	kindHeartbeat = "heartbeat"
	kindForward   = "forward"
)

// HeartbeatPayload is the body of a self-addressed liveness probe: the
// mix's own heartbeat tag and the time it was emitted.
type HeartbeatPayload struct {
	Tag  fmd.Tag   `json:"tag"`
	Time time.Time `json:"time"`
}

// MixMessage is the explicit tagged union a mix parses its own decrypted
// traffic into: either a liveness Heartbeat or a Forward carrying the
// next layer of ciphertext to push through the pool. An outer field
// discriminates the two, avoiding the ambiguous double-parse the source
// protocol relies on.
type MixMessage struct {
	Kind      string                   `json:"kind"`
	Heartbeat *HeartbeatPayload        `json:"heartbeat,omitempty"`
	Forward   *hybrid.TaggedCiphertext `json:"forward,omitempty"`
}

// NewHeartbeat builds a Heartbeat MixMessage.
func NewHeartbeat(tag fmd.Tag, t time.Time) MixMessage {
	return MixMessage{Kind: kindHeartbeat, Heartbeat: &HeartbeatPayload{Tag: tag, Time: t}}
}

// probe discriminates a raw TaggedCiphertext (the inner layer produced
// by profile.TagAndMix, which has no "kind" field) from an explicit
// MixMessage envelope.
type probe struct {
	Kind *string `json:"kind"`
}

// ParseIncoming decodes a decrypted plaintext into a MixMessage. A
// payload with no "kind" discriminator is assumed to be a bare
// TaggedCiphertext forward, matching the wire shape profile.TagAndMix
// produces for its inner layer. Any payload that is neither a valid
// MixMessage nor a valid TaggedCiphertext reports ErrMalformedMessage;
// callers must drop it silently rather than surface the distinction.
func ParseIncoming(plaintext string) (*MixMessage, error) {
	var p probe
	if err := json.Unmarshal([]byte(plaintext), &p); err == nil && p.Kind != nil {
		var msg MixMessage
		if err := json.Unmarshal([]byte(plaintext), &msg); err != nil {
			return nil, ErrMalformedMessage
		}
		switch msg.Kind {
		case kindHeartbeat:
			if msg.Heartbeat == nil {
				return nil, ErrMalformedMessage
			}
		case kindForward:
			if msg.Forward == nil {
				return nil, ErrMalformedMessage
			}
		default:
			return nil, ErrMalformedMessage
		}
		return &msg, nil
	}

	var ct hybrid.TaggedCiphertext
	if err := json.Unmarshal([]byte(plaintext), &ct); err != nil {
		return nil, ErrMalformedMessage
	}
	return &MixMessage{Kind: kindForward, Forward: &ct}, nil
}
