package mix

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/stretchr/testify/require"
)

func freshCiphertext(t *testing.T) hybrid.TaggedCiphertext {
	t.Helper()
	ct, err := coverCiphertext()
	require.NoError(t, err)
	return *ct
}

func TestPoolSizeInvariant(t *testing.T) {
	cover := make([]hybrid.TaggedCiphertext, DefaultCapacity)
	for i := range cover {
		cover[i] = freshCiphertext(t)
	}
	pool := NewPool(DefaultCapacity, cover...)
	require.Equal(t, DefaultCapacity, pool.Len())

	for i := 0; i < 50; i++ {
		_, err := pool.Eject(freshCiphertext(t))
		require.NoError(t, err)
		require.Equal(t, DefaultCapacity, pool.Len())
	}
}

func TestPoolContentConservation(t *testing.T) {
	cover := make([]hybrid.TaggedCiphertext, 3)
	for i := range cover {
		cover[i] = freshCiphertext(t)
	}
	pool := NewPool(3, cover...)

	before := make(map[string]bool, len(pool.entries))
	for _, e := range pool.entries {
		before[string(e.Tag.Compress())] = true
	}

	incoming := freshCiphertext(t)
	out, err := pool.Eject(incoming)
	require.NoError(t, err)

	after := make(map[string]bool, len(pool.entries))
	for _, e := range pool.entries {
		after[string(e.Tag.Compress())] = true
	}

	require.True(t, before[string(out.Tag.Compress())], "ejected entry must have been present before the call")
	require.True(t, after[string(incoming.Tag.Compress())], "incoming entry must be present after the call")

	delete(before, string(out.Tag.Compress()))
	delete(after, string(incoming.Tag.Compress()))
	require.Equal(t, before, after, "the remaining multiset must be unchanged")
}

// TestPoolEgressProbabilityAfterNInputs inserts a distinguishable
// ciphertext into a capacity-N pool, drives N further independent
// ejections, and checks how often the original ciphertext comes back
// out somewhere in that run. Each eject targets a uniformly random
// slot, so the original survives a single eject with probability
// (N-1)/N; after N independent ejects it should have been egressed with
// probability 1-((N-1)/N)^N, about 0.65 for N=10. Run many trials and
// compare the empirical rate against that figure within tolerance, the
// same style as the false-positive-rate trial in fmd's own tests.
func TestPoolEgressProbabilityAfterNInputs(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical trial is slow under -short")
	}

	const n = DefaultCapacity
	const trials = 4000

	egressed := 0
	for i := 0; i < trials; i++ {
		cover := make([]hybrid.TaggedCiphertext, n)
		for j := range cover {
			cover[j] = freshCiphertext(t)
		}
		pool := NewPool(n, cover...)

		target := freshCiphertext(t)
		targetTagBytes := target.Tag.Compress()
		_, err := pool.Eject(target)
		require.NoError(t, err)

		seen := false
		for k := 0; k < n; k++ {
			out, err := pool.Eject(freshCiphertext(t))
			require.NoError(t, err)
			if string(out.Tag.Compress()) == string(targetTagBytes) {
				seen = true
			}
		}
		if seen {
			egressed++
		}
	}

	got := float64(egressed) / float64(trials)
	want := 1 - math.Pow(float64(n-1)/float64(n), float64(n))
	require.InDelta(t, want, got, 0.04, "empirical egress rate %.4f should track 1-((N-1)/N)^N = %.4f", got, want)
}

func TestParseIncomingForward(t *testing.T) {
	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	sk, err := hybrid.GeneratePrivateKey()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)
	ct, err := sk.PublicKey().Seal(*tag, "inner")
	require.NoError(t, err)

	data, err := json.Marshal(ct)
	require.NoError(t, err)

	msg, err := ParseIncoming(string(data))
	require.NoError(t, err)
	require.Equal(t, kindForward, msg.Kind)
	require.NotNil(t, msg.Forward)
}

func TestParseIncomingHeartbeat(t *testing.T) {
	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)

	hb := NewHeartbeat(*tag, time.Now())
	data, err := json.Marshal(hb)
	require.NoError(t, err)

	msg, err := ParseIncoming(string(data))
	require.NoError(t, err)
	require.Equal(t, kindHeartbeat, msg.Kind)
	require.NotNil(t, msg.Heartbeat)
}

func TestParseIncomingRejectsGarbage(t *testing.T) {
	_, err := ParseIncoming("not json at all")
	require.ErrorIs(t, err, ErrMalformedMessage)
}
