package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p, err := New("alice", 4)
	require.NoError(t, err)

	bob, err := New("bob", 4)
	require.NoError(t, err)
	encoded, err := bob.KeySet().Encode()
	require.NoError(t, err)
	require.NoError(t, p.ImportTaggingKey(encoded))

	tag, err := bob.RootSecret.TaggingKey().GenerateTag()
	require.NoError(t, err)
	p.UpdatePreviouslySeenTag(*tag)

	path := filepath.Join(t.TempDir(), "alice.profile")
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, p.Name, loaded.Name)
	require.Equal(t, p.DetectionKeyLength, loaded.DetectionKeyLength)
	require.Equal(t, p.RootSecret.TaggingKey().Compress(), loaded.RootSecret.TaggingKey().Compress())
	require.Equal(t, p.PrivateKey.PublicKey().Compress(), loaded.PrivateKey.PublicKey().Compress())
	require.Len(t, loaded.Contacts, 1)
	require.Equal(t, path, loaded.SavePath)
	require.NotNil(t, loaded.LastSeenTag)
	require.Equal(t, tag.Compress(), loaded.LastSeenTag.Compress())
}

func TestLoadMissingFileIsPersistenceError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.profile"))
	require.ErrorIs(t, err, ErrPersistence)
}
