// Package mix implements a random-ejection mix node: a profile that
// advertises its keys publicly, runs a fixed-capacity ciphertext pool,
// and forwards relayed traffic through it while monitoring its own
// heartbeat for relay-induced delay.
package mix
