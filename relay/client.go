package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/sirupsen/logrus"
)

// Client is the HTTP client side of the relay contract. All operations
// suspend only at the network boundary and run to completion before
// returning.
type Client struct {
	BaseURL string
	http    *http.Client
}

// NewClient builds a Client against a relay listening at baseURL (e.g.
// "http://localhost:8080"), with a sane default request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Post submits a tagged ciphertext to the relay's ordered log.
func (c *Client) Post(ctx context.Context, tag fmd.Tag, ct hybrid.TaggedCiphertext) (*PostMessageResponse, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Post",
		"package":  "relay",
		"relay":    c.BaseURL,
	})

	body, err := json.Marshal(PostMessageRequest{Tag: tag, Ciphertext: ct})
	if err != nil {
		return nil, newError("post", c.BaseURL, err)
	}

	var resp PostMessageResponse
	if err := c.doJSON(ctx, "/new", body, &resp); err != nil {
		logger.WithError(err).Warn("failed to post tagged ciphertext")
		return nil, newError("post", c.BaseURL, err)
	}

	logger.WithField("tag", resp.Tag).Debug("posted tagged ciphertext")
	return &resp, nil
}

// Fetch retrieves the slice of the relay's log newer than referenceTag
// (or the whole log if referenceTag is nil), filtered server-side by dk.
func (c *Client) Fetch(ctx context.Context, referenceTag *fmd.Tag, dk fmd.DetectionKey) (*FetchMessagesResponse, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Fetch",
		"package":  "relay",
		"relay":    c.BaseURL,
	})

	body, err := json.Marshal(FetchMessagesRequest{ReferenceTag: referenceTag, DetectionKey: dk})
	if err != nil {
		return nil, newError("fetch", c.BaseURL, err)
	}

	var resp FetchMessagesResponse
	if err := c.doJSON(ctx, "/tags", body, &resp); err != nil {
		logger.WithError(err).Warn("failed to fetch tags")
		return nil, newError("fetch", c.BaseURL, err)
	}

	logger.WithField("count", len(resp.DetectedTags)).Debug("fetched detected tags")
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("relay responded %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
