package profile

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gtank/niwl/relay"
	"github.com/gtank/niwl/relaystore"
	"github.com/gtank/niwl/relayserver"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) *relay.Client {
	t.Helper()
	store := relaystore.NewMemStore()
	srv := &relayserver.Server{Store: store}
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return relay.NewClient(ts.URL)
}

// TestDirectDelivery has Alice (ℓ=2) import Bob's (ℓ=2) KeySet and send
// him a message; Bob's next detect round must surface at least one tag,
// with exactly one decrypting to the sent plaintext.
func TestDirectDelivery(t *testing.T) {
	client := newTestRelay(t)
	ctx := context.Background()

	alice, err := New("alice", 2)
	require.NoError(t, err)
	bob, err := New("bob", 2)
	require.NoError(t, err)

	bobKeySet, err := bob.KeySet().Encode()
	require.NoError(t, err)
	require.NoError(t, alice.ImportTaggingKey(bobKeySet))

	_, err = alice.TagAndSend(ctx, client, "bob", "hello")
	require.NoError(t, err)

	resp, err := bob.DetectTags(ctx, client)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resp.DetectedTags), 1)

	hits := 0
	for _, entry := range resp.DetectedTags {
		plaintext, ok := bob.PrivateKey.Open(&entry.Ciphertext)
		if !ok {
			continue
		}
		require.Equal(t, "hello", plaintext)
		hits++
	}
	require.Equal(t, 1, hits, "exactly one detected tag should decrypt to the sent message, the rest are the detection key's false-positive cover")
}

// TestNoKnownContact verifies sending to an unimported contact fails
// locally and posts nothing to the relay.
func TestNoKnownContact(t *testing.T) {
	client := newTestRelay(t)
	ctx := context.Background()

	alice, err := New("alice", 2)
	require.NoError(t, err)

	_, err = alice.TagAndSend(ctx, client, "carol", "hi")
	require.ErrorIs(t, err, ErrNoKnownContact)

	owner, err := New("owner", 2)
	require.NoError(t, err)
	dk, err := owner.RootSecret.ExtractDetectionKey(1)
	require.NoError(t, err)
	resp, err := client.Fetch(ctx, nil, *dk)
	require.NoError(t, err)
	require.Empty(t, resp.DetectedTags, "no post should have reached the relay")
}

func TestForward(t *testing.T) {
	client := newTestRelay(t)
	ctx := context.Background()

	p, err := New("relayer", 4)
	require.NoError(t, err)
	bob, err := New("bob", 4)
	require.NoError(t, err)

	bobKeySet, err := bob.KeySet().Encode()
	require.NoError(t, err)
	require.NoError(t, p.ImportTaggingKey(bobKeySet))

	tag, err := p.GenerateTag("bob")
	require.NoError(t, err)
	ct, err := bob.PrivateKey.PublicKey().Seal(tag, "forwarded")
	require.NoError(t, err)

	_, err = p.Forward(ctx, client, *ct)
	require.NoError(t, err)

	dk, err := bob.RootSecret.ExtractDetectionKey(4)
	require.NoError(t, err)
	resp, err := client.Fetch(ctx, nil, *dk)
	require.NoError(t, err)
	require.Len(t, resp.DetectedTags, 1)
}
