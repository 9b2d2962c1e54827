package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure Fisher-Yates shuffle of the
// slice.
func Shuffle[T any](slice []T) error {
	n := len(slice)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// Draw selects min(k, |pool|) distinct elements uniformly at random,
// without replacement. The pool is deduplicated first, so repeated inputs
// cannot yield repeated winners. It works by picking a uniform index from
// the shrinking remaining pool k times; the order of the result carries no
// ranking meaning. An empty pool yields an empty result, not an error.
func Draw(pool []string, k int) ([]string, error) {
	seen := make(map[string]struct{}, len(pool))
	remaining := make([]string, 0, len(pool))
	for _, p := range pool {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		remaining = append(remaining, p)
	}

	if k > len(remaining) {
		k = len(remaining)
	}
	if k <= 0 {
		return []string{}, nil
	}

	picked := make([]string, 0, k)
	for len(picked) < k {
		iBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(remaining))))
		if err != nil {
			return nil, fmt.Errorf("failed to generate random number: %w", err)
		}
		i := int(iBig.Int64())
		picked = append(picked, remaining[i])
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return picked, nil
}
