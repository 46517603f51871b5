// Package relayserver exposes a relaystore.Store over HTTP: POST /new to
// append a tagged ciphertext, POST /tags to fetch everything newer than a
// reference tag that passes a detection key.
package relayserver
