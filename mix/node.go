package mix

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"time"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/gtank/niwl/profile"
	"github.com/gtank/niwl/relay"
	"github.com/sirupsen/logrus"
)

// heartbeatTimeout is the window after which a mix presumes the relay
// is delaying delivery of its own heartbeat.
const heartbeatTimeout = 2 * time.Minute

// selfDetectionKeyLength is ℓ=24: essentially no false positives for
// messages the mix addresses to itself.
const selfDetectionKeyLength = fmd.MaxDetectionKeyLength

// Node is a running random-ejection mix: a profile plus the pool and
// heartbeat state that drive its main loop.
type Node struct {
	Profile       *profile.Profile
	Relay         *relay.Client
	Pool          *Pool
	HeartbeatTag  fmd.Tag
	LastHeartbeat time.Time
}

// NewNode bootstraps a mix node: generates a heartbeat tag, pre-fills
// the pool with cover ciphertexts nobody can decrypt, and emits an
// initial heartbeat to self.
func NewNode(ctx context.Context, p *profile.Profile, client *relay.Client) (*Node, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "NewNode",
		"package":  "mix",
		"profile":  p.Name,
	})

	heartbeatTag, err := p.RootSecret.TaggingKey().GenerateTag()
	if err != nil {
		return nil, err
	}

	cover := make([]hybrid.TaggedCiphertext, DefaultCapacity)
	for i := range cover {
		ct, err := coverCiphertext()
		if err != nil {
			return nil, err
		}
		cover[i] = *ct
	}

	n := &Node{
		Profile:      p,
		Relay:        client,
		Pool:         NewPool(DefaultCapacity, cover...),
		HeartbeatTag: *heartbeatTag,
	}

	now := time.Now()
	heartbeatJSON, err := json.Marshal(NewHeartbeat(n.HeartbeatTag, now))
	if err != nil {
		return nil, err
	}
	if _, err := p.SendToSelf(ctx, client, string(heartbeatJSON)); err != nil {
		logger.WithError(err).Error("failed to emit initial heartbeat")
		return nil, err
	}
	n.LastHeartbeat = now

	logger.Info("mix node initialized")
	return n, nil
}

// HeartbeatHealthy reports whether the mix's own heartbeat has been
// seen within heartbeatTimeout of now.
func (n *Node) HeartbeatHealthy(now time.Time) bool {
	return now.Sub(n.LastHeartbeat) <= heartbeatTimeout
}

// Run drives the mix's main loop until ctx is cancelled. Each iteration
// refreshes cover traffic (a routine single ciphertext, or a burst of
// 0 to 99 if the heartbeat looks unhealthy), fetches newly detected
// tags, dispatches each to a Forward or Heartbeat handler, and sleeps a
// random delay before looping.
func (n *Node) Run(ctx context.Context) error {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Run",
		"package":  "mix",
		"profile":  n.Profile.Name,
	})

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := n.refreshCover(ctx); err != nil {
			logger.WithError(err).Warn("cover traffic refresh failed")
		}

		resp, err := n.Profile.DetectTags(ctx, n.Relay)
		if err != nil {
			logger.WithError(err).Warn("detect round failed, continuing")
		} else {
			for _, entry := range resp.DetectedTags {
				n.handleEntry(ctx, entry)
			}
		}

		delay, err := randomDuration(10 * time.Second)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (n *Node) handleEntry(ctx context.Context, entry relay.DetectedEntry) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "handleEntry",
		"package":  "mix",
		"profile":  n.Profile.Name,
	})

	plaintext, ok := n.Profile.PrivateKey.Open(&entry.Ciphertext)
	if !ok {
		return
	}

	msg, err := ParseIncoming(plaintext)
	if err != nil {
		logger.Debug("dropping undecodable mix payload")
		return
	}

	switch msg.Kind {
	case kindForward:
		ejected, err := n.Pool.Eject(*msg.Forward)
		if err != nil {
			logger.WithError(err).Error("pool ejection failed")
			return
		}
		if _, err := n.Profile.Forward(ctx, n.Relay, ejected); err != nil {
			logger.WithError(err).Warn("failed to forward ejected ciphertext")
		}
	case kindHeartbeat:
		if !tagsEqual(msg.Heartbeat.Tag, n.HeartbeatTag) {
			return
		}
		n.LastHeartbeat = msg.Heartbeat.Time
		fresh := NewHeartbeat(n.HeartbeatTag, time.Now())
		freshJSON, err := json.Marshal(fresh)
		if err != nil {
			logger.WithError(err).Error("failed to marshal heartbeat response")
			return
		}
		if _, err := n.Profile.SendToSelf(ctx, n.Relay, string(freshJSON)); err != nil {
			logger.WithError(err).Warn("failed to emit heartbeat response")
		}
	}
}

// refreshCover emits one fresh cover ciphertext on a healthy heartbeat,
// or a burst of k ciphertexts, k drawn uniformly from [0, 100), if the
// heartbeat looks stale.
func (n *Node) refreshCover(ctx context.Context) error {
	count := 1
	if !n.HeartbeatHealthy(time.Now()) {
		k, err := randomIndex(100)
		if err != nil {
			return err
		}
		count = k
	}

	for i := 0; i < count; i++ {
		ct, err := coverCiphertext()
		if err != nil {
			return err
		}
		ctJSON, err := json.Marshal(ct)
		if err != nil {
			return err
		}
		if _, err := n.Profile.SendToSelf(ctx, n.Relay, string(ctJSON)); err != nil {
			return err
		}
	}
	return nil
}

// coverCiphertext produces a ciphertext sealed to a freshly-generated,
// throwaway key pair under a freshly-generated, throwaway tag: it is
// decryptable by nobody and indistinguishable from real traffic to
// anyone but the mix that discards it.
func coverCiphertext() (*hybrid.TaggedCiphertext, error) {
	ephemeralRoot, err := fmd.GenerateRootSecret()
	if err != nil {
		return nil, err
	}
	tag, err := ephemeralRoot.TaggingKey().GenerateTag()
	if err != nil {
		return nil, err
	}

	ephemeralKey, err := hybrid.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	return ephemeralKey.PublicKey().Seal(*tag, "")
}

func tagsEqual(a, b fmd.Tag) bool {
	ca, cb := a.Compress(), b.Compress()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}

func randomDuration(max time.Duration) (time.Duration, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return time.Duration(n.Int64()), nil
}
