package profile

import "errors"

var (
	// ErrNoKnownContact indicates the requested contact name is absent
	// from the profile's contact book. Not retryable; the caller must
	// import the contact's tagging key first.
	ErrNoKnownContact = errors.New("profile: no known contact")

	// ErrDuplicateContact indicates ImportTaggingKey was asked to import
	// a profile name already present in the contact book. Import is a
	// warn-and-no-op in this case, never an overwrite.
	ErrDuplicateContact = errors.New("profile: contact already known")

	// ErrMalformedKeySet indicates a base32-encoded KeySet failed to decode.
	ErrMalformedKeySet = errors.New("profile: malformed key set encoding")

	// ErrPersistence indicates the profile file could not be written.
	// Logged by callers; never aborts an in-progress operation.
	ErrPersistence = errors.New("profile: persistence failure")
)
