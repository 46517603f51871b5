package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeySetEncodeDecodeRoundTrip(t *testing.T) {
	p, err := New("alice", 8)
	require.NoError(t, err)

	encoded, err := p.KeySet().Encode()
	require.NoError(t, err)

	decoded, err := DecodeKeySet(encoded)
	require.NoError(t, err)
	require.Equal(t, "alice", decoded.ProfileName)
	require.Equal(t, p.RootSecret.TaggingKey().Compress(), decoded.TaggingKey.Compress())
	require.Equal(t, p.PrivateKey.PublicKey().Compress(), decoded.PublicKey.Compress())
}

func TestImportTaggingKeyRejectsDuplicateName(t *testing.T) {
	alice, err := New("alice", 8)
	require.NoError(t, err)
	bob, err := New("bob", 8)
	require.NoError(t, err)

	encoded, err := bob.KeySet().Encode()
	require.NoError(t, err)

	require.NoError(t, alice.ImportTaggingKey(encoded))
	require.Len(t, alice.Contacts, 1)

	err = alice.ImportTaggingKey(encoded)
	require.ErrorIs(t, err, ErrDuplicateContact)
	require.Len(t, alice.Contacts, 1)
}

func TestDecodeKeySetRejectsGarbage(t *testing.T) {
	_, err := DecodeKeySet("not-valid-base32!!")
	require.ErrorIs(t, err, ErrMalformedKeySet)
}
