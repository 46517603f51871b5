package mix

import (
	"crypto/rand"
	"math/big"

	"github.com/gtank/niwl/hybrid"
)

// DefaultCapacity is the pool size N the original mix bootstraps with.
const DefaultCapacity = 10

// Pool is the fixed-capacity ciphertext pool a random-ejection mix
// swaps incoming ciphertexts through. Its size never changes after
// construction.
type Pool struct {
	entries []hybrid.TaggedCiphertext
}

// NewPool returns a Pool of capacity n, pre-filled with cover. Callers
// are expected to pass exactly n cover ciphertexts (the mix's startup
// sequence bootstraps the pool this way); passing fewer leaves the
// remaining slots zero-valued, which Eject will happily swap out like
// any other entry.
func NewPool(n int, cover ...hybrid.TaggedCiphertext) *Pool {
	entries := make([]hybrid.TaggedCiphertext, n)
	copy(entries, cover)
	return &Pool{entries: entries}
}

// Len reports the pool's fixed capacity.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Eject swaps ct into a uniformly random pool slot and returns the
// ciphertext that occupied it. This yields geometric dwell time with
// mean N per slot, decorrelating input and output ordering.
func (p *Pool) Eject(ct hybrid.TaggedCiphertext) (hybrid.TaggedCiphertext, error) {
	i, err := randomIndex(len(p.entries))
	if err != nil {
		return hybrid.TaggedCiphertext{}, err
	}

	out := p.entries[i]
	p.entries[i] = ct
	return out, nil
}

// randomIndex draws a uniform index in [0, n) from a cryptographically
// secure source.
func randomIndex(n int) (int, error) {
	max := big.NewInt(int64(n))
	idx, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}
	return int(idx.Int64()), nil
}
