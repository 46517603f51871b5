package hybrid

import (
	"encoding/json"
	"testing"

	"github.com/gtank/niwl/fmd"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)

	sk, err := GeneratePrivateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	ct, err := pk.Seal(*tag, "Hello World")
	require.NoError(t, err)

	plain, ok := sk.Open(ct)
	require.True(t, ok)
	require.Equal(t, "Hello World", plain)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)

	alice, err := GeneratePrivateKey()
	require.NoError(t, err)
	bob, err := GeneratePrivateKey()
	require.NoError(t, err)

	ct, err := alice.PublicKey().Seal(*tag, "secret")
	require.NoError(t, err)

	_, ok := bob.Open(ct)
	require.False(t, ok)
}

func TestSealAllowsEmptyAndRejectsOversizedMessages(t *testing.T) {
	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)

	sk, err := GeneratePrivateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	// Cover traffic seals the empty string; Seal must allow it.
	ct, err := pk.Seal(*tag, "")
	require.NoError(t, err)
	plain, ok := sk.Open(ct)
	require.True(t, ok)
	require.Equal(t, "", plain)

	oversized := make([]byte, MaxMessageSize+1)
	_, err = pk.Seal(*tag, string(oversized))
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestTaggedCiphertextJSONRoundTrip(t *testing.T) {
	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)

	sk, err := GeneratePrivateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	ct, err := pk.Seal(*tag, "hello")
	require.NoError(t, err)

	data, err := json.Marshal(ct)
	require.NoError(t, err)

	var decoded TaggedCiphertext
	require.NoError(t, json.Unmarshal(data, &decoded))

	plain, ok := sk.Open(&decoded)
	require.True(t, ok)
	require.Equal(t, "hello", plain)
}

func TestKeyJSONRoundTrip(t *testing.T) {
	sk, err := GeneratePrivateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	skData, err := json.Marshal(sk)
	require.NoError(t, err)
	var decodedSK PrivateKey
	require.NoError(t, json.Unmarshal(skData, &decodedSK))
	require.Equal(t, sk.Compress(), decodedSK.Compress())

	pkData, err := json.Marshal(pk)
	require.NoError(t, err)
	var decodedPK PublicKey
	require.NoError(t, json.Unmarshal(pkData, &decodedPK))
	require.Equal(t, pk.Compress(), decodedPK.Compress())
}
