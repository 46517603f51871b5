package relaystore

import (
	"context"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
)

// Entry is a single row of the relay's ordered log.
type Entry struct {
	ID         int64
	Tag        fmd.Tag
	Ciphertext hybrid.TaggedCiphertext
}

// Store is the ordered append-only log a relay server keeps: every
// posted tag/ciphertext pair gets a monotonically increasing id, and
// Fetch returns entries newer than a reference tag, filtered by a
// detection key.
type Store interface {
	// Post appends a new entry and returns its assigned id.
	Post(ctx context.Context, tag fmd.Tag, ct hybrid.TaggedCiphertext) (id int64, err error)

	// Fetch returns every entry whose id is strictly greater than the
	// cut-point resolved from referenceTag (the highest id among entries
	// sharing its compressed tag bytes; the whole log if referenceTag is
	// nil), filtered to those dk.Test reports true for, in ascending id
	// order.
	Fetch(ctx context.Context, referenceTag *fmd.Tag, dk fmd.DetectionKey) ([]Entry, error)
}
