package mix

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gtank/niwl/profile"
	"github.com/gtank/niwl/relay"
	"github.com/gtank/niwl/relaystore"
	"github.com/gtank/niwl/relayserver"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) (*relay.Client, func()) {
	t.Helper()
	store := relaystore.NewMemStore()
	srv := &relayserver.Server{Store: store}
	ts := httptest.NewServer(srv.Routes())
	return relay.NewClient(ts.URL), ts.Close
}

func TestNewNodeEmitsInitialHeartbeat(t *testing.T) {
	client, closeFn := newTestRelay(t)
	defer closeFn()

	p, err := profile.New("mix", selfDetectionKeyLength)
	require.NoError(t, err)

	ctx := context.Background()
	n, err := NewNode(ctx, p, client)
	require.NoError(t, err)
	require.Equal(t, DefaultCapacity, n.Pool.Len())
	require.False(t, n.LastHeartbeat.IsZero())

	resp, err := p.DetectTags(ctx, client)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resp.DetectedTags), 1, "initial heartbeat must be visible to the mix's own detection key")
}

func TestHeartbeatHealthy(t *testing.T) {
	n := &Node{LastHeartbeat: time.Now()}
	require.True(t, n.HeartbeatHealthy(time.Now()))

	n.LastHeartbeat = time.Now().Add(-3 * time.Minute)
	require.False(t, n.HeartbeatHealthy(time.Now()))
}

func TestHandleEntryForwardEjectsThroughPool(t *testing.T) {
	client, closeFn := newTestRelay(t)
	defer closeFn()

	ctx := context.Background()
	p, err := profile.New("mix", selfDetectionKeyLength)
	require.NoError(t, err)
	n, err := NewNode(ctx, p, client)
	require.NoError(t, err)

	bob, err := profile.New("bob", 2)
	require.NoError(t, err)

	mixKeySet := p.KeySet()
	encoded, err := mixKeySet.Encode()
	require.NoError(t, err)
	require.NoError(t, bob.ImportTaggingKey(encoded))

	_, err = bob.TagAndMix(ctx, client, "mix", "mix", "hello via mix")
	require.NoError(t, err)

	resp, err := p.DetectTags(ctx, client)
	require.NoError(t, err)

	forwarded := false
	for _, entry := range resp.DetectedTags {
		plaintext, ok := p.PrivateKey.Open(&entry.Ciphertext)
		if !ok {
			continue
		}
		msg, err := ParseIncoming(plaintext)
		if err != nil {
			continue
		}
		if msg.Kind == kindForward {
			forwarded = true
			n.handleEntry(ctx, entry)
		}
	}
	require.True(t, forwarded, "expected at least one forward-kind entry from TagAndMix")
}

func selfEntryCount(t *testing.T, ctx context.Context, store relaystore.Store, p *profile.Profile) int {
	t.Helper()
	dk, err := p.RootSecret.ExtractDetectionKey(selfDetectionKeyLength)
	require.NoError(t, err)
	entries, err := store.Fetch(ctx, nil, *dk)
	require.NoError(t, err)
	return len(entries)
}

// TestRefreshCoverBurstWhileUnhealthyAndRecovery starves a node's
// heartbeat past the timeout, checks that refreshCover switches from its
// routine one-ciphertext emission to a k in [0,100) burst, then resumes
// heartbeat delivery and checks the node recovers to healthy.
func TestRefreshCoverBurstWhileUnhealthyAndRecovery(t *testing.T) {
	store := relaystore.NewMemStore()
	srv := &relayserver.Server{Store: store}
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()
	client := relay.NewClient(ts.URL)

	ctx := context.Background()
	p, err := profile.New("mix", selfDetectionKeyLength)
	require.NoError(t, err)
	n, err := NewNode(ctx, p, client)
	require.NoError(t, err)

	require.True(t, n.HeartbeatHealthy(time.Now()))
	before := selfEntryCount(t, ctx, store, p)
	require.NoError(t, n.refreshCover(ctx))
	after := selfEntryCount(t, ctx, store, p)
	require.Equal(t, 1, after-before, "a healthy heartbeat should only trigger the routine single cover ciphertext")

	const staleIterations = 10
	totalBurst := 0
	for i := 0; i < staleIterations; i++ {
		n.LastHeartbeat = time.Now().Add(-3 * time.Minute)
		require.False(t, n.HeartbeatHealthy(time.Now()))

		before = selfEntryCount(t, ctx, store, p)
		require.NoError(t, n.refreshCover(ctx))
		after = selfEntryCount(t, ctx, store, p)
		totalBurst += after - before
	}
	require.Greater(t, totalBurst, 3*staleIterations,
		"an unhealthy heartbeat should trigger bursts well above the routine one-ciphertext rate")

	hb := NewHeartbeat(n.HeartbeatTag, time.Now())
	hbJSON, err := json.Marshal(hb)
	require.NoError(t, err)
	_, err = p.SendToSelf(ctx, client, string(hbJSON))
	require.NoError(t, err)

	resp, err := p.DetectTags(ctx, client)
	require.NoError(t, err)

	handled := false
	for _, entry := range resp.DetectedTags {
		plaintext, ok := p.PrivateKey.Open(&entry.Ciphertext)
		if !ok {
			continue
		}
		msg, err := ParseIncoming(plaintext)
		if err != nil || msg.Kind != kindHeartbeat {
			continue
		}
		if !tagsEqual(msg.Heartbeat.Tag, n.HeartbeatTag) {
			continue
		}
		n.handleEntry(ctx, entry)
		handled = true
	}
	require.True(t, handled, "expected the resumed heartbeat to be detected")
	require.True(t, n.HeartbeatHealthy(time.Now()), "heartbeat should be healthy again once a fresh heartbeat is processed")
}
