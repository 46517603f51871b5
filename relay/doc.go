// Package relay defines the wire types shared between a niwl client and a
// niwl relay server, and implements the HTTP client side of that contract:
// POST /new to post a tagged ciphertext, and POST /tags to fetch an
// incremental, detection-key-filtered slice of the relay's ordered log.
package relay
