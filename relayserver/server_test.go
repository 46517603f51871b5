package relayserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/gtank/niwl/relay"
	"github.com/gtank/niwl/relaystore"
	"github.com/stretchr/testify/require"
)

func TestPostAndFetchRoundTrip(t *testing.T) {
	store := relaystore.NewMemStore()
	srv := &Server{Store: store}
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	client := relay.NewClient(ts.URL)

	rs, err := fmd.GenerateRootSecret()
	require.NoError(t, err)
	sk, err := hybrid.GeneratePrivateKey()
	require.NoError(t, err)
	tk := rs.TaggingKey()
	pk := sk.PublicKey()

	tag, err := tk.GenerateTag()
	require.NoError(t, err)
	ct, err := pk.Seal(*tag, "hello over http")
	require.NoError(t, err)

	ctx := context.Background()
	postResp, err := client.Post(ctx, *tag, *ct)
	require.NoError(t, err)
	require.Equal(t, tag.String(), postResp.Tag)

	dk, err := rs.ExtractDetectionKey(fmd.MaxDetectionKeyLength)
	require.NoError(t, err)

	fetchResp, err := client.Fetch(ctx, nil, *dk)
	require.NoError(t, err)
	require.Len(t, fetchResp.DetectedTags, 1)

	plain, ok := sk.Open(&fetchResp.DetectedTags[0].Ciphertext)
	require.True(t, ok)
	require.Equal(t, "hello over http", plain)
}

func TestHandlePostMalformedBody(t *testing.T) {
	store := relaystore.NewMemStore()
	srv := &Server{Store: store}
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/new", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
