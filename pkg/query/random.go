package query

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/crocdb/crocdb-api/pkg/catalog"
)

// randomEntry draws one entry uniformly from the snapshot. crypto/rand keeps
// draws unpredictable across requests; uniformity follows from indexing into
// the snapshot's fixed order with an unbiased integer.
func randomEntry(snap *catalog.Snapshot) (*catalog.Entry, error) {
	n := snap.Len()
	if n == 0 {
		return nil, catalog.ErrNotFound
	}

	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return nil, fmt.Errorf("drawing random entry: %w", err)
	}
	return snap.At(int(i.Int64())), nil
}
