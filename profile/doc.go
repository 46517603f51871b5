// Package profile implements a niwl participant's keystore: the long-term
// RootSecret and hybrid PrivateKey, a contact book of friends' public
// capabilities, the detection-key length chosen at creation, and the
// last-seen-tag cursor used for incremental relay fetches. It also
// implements the relay-facing operations a client or mix node drives a
// profile through: tagging and sending, detecting, and forwarding.
package profile
