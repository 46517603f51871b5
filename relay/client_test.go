package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/stretchr/testify/require"
)

func TestFetchWrapsRemoteServerErrorOnUnreachableHost(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")

	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	dk, err := rs.ExtractDetectionKey(1)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), nil, *dk)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRemoteServer))

	var relayErr *Error
	require.True(t, errors.As(err, &relayErr))
	require.Equal(t, "fetch", relayErr.Op)
}

func TestPostWrapsRemoteServerErrorOnUnreachableHost(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")

	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	tag, err := rs.TaggingKey().GenerateTag()
	require.NoError(t, err)

	sk, err := hybrid.GeneratePrivateKey()
	require.NoError(t, err)
	ct, err := sk.PublicKey().Seal(*tag, "hello")
	require.NoError(t, err)

	_, err = client.Post(context.Background(), *tag, *ct)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRemoteServer))
}
