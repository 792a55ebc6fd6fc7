package query

import (
	"sort"

	"github.com/crocdb/crocdb-api/pkg/catalog"
)

// Filter composition is set algebra over slug sets: OR (union) within a
// dimension, AND (intersection) across dimensions. Unknown codes contribute
// empty sets and compose normally, so they are not errors.

// evaluate executes q's predicate against snap and returns the matching
// slugs in the snapshot's deterministic (title, slug) order. Pure over the
// snapshot; no side effects.
func evaluate(snap *catalog.Snapshot, q Query) []string {
	idx := snap.Index()

	// Dimensions that were actually specified, each as a slug set.
	var dims []map[string]struct{}

	// The rom_id filter short-circuits: at most one candidate exists, and
	// the remaining dimensions still apply against it.
	if q.RomID != "" {
		slug, ok := idx.SlugByRomID(q.RomID)
		if !ok {
			return nil
		}
		dims = append(dims, map[string]struct{}{slug: {}})
	}

	if len(q.Platforms) > 0 {
		dims = append(dims, unionOf(idx.SlugsForPlatform, q.Platforms))
	}

	if len(q.Regions) > 0 {
		dims = append(dims, unionOf(idx.SlugsForRegion, q.Regions))
	}

	if tokens := catalog.Tokens(catalog.Normalize(q.SearchKey)); len(tokens) > 0 {
		matched, any := matchTokens(idx, tokens)
		if !any {
			return nil
		}
		dims = append(dims, matched)
	}

	// No dimension specified: everything matches, already in order.
	if len(dims) == 0 {
		return snap.Ordered()
	}

	result := intersect(dims)

	// Re-rank the matched set using the snapshot's precomputed order.
	slugs := make([]string, 0, len(result))
	for slug := range result {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		ri, _ := snap.Rank(slugs[i])
		rj, _ := snap.Rank(slugs[j])
		return ri < rj
	})
	return slugs
}

// matchTokens intersects the per-token substring matches for a search key.
// Every key token must match somewhere in the normalized title (AND across
// tokens). The trigram bloom filter rejects impossible tokens before any
// vocabulary scan.
func matchTokens(idx *catalog.Index, tokens []string) (map[string]struct{}, bool) {
	var acc map[string]struct{}
	for _, tok := range tokens {
		if !idx.MayContain(tok) {
			return nil, false
		}
		matched := idx.SlugsMatchingToken(tok)
		if len(matched) == 0 {
			return nil, false
		}
		if acc == nil {
			acc = matched
			continue
		}
		for slug := range acc {
			if _, ok := matched[slug]; !ok {
				delete(acc, slug)
			}
		}
		if len(acc) == 0 {
			return nil, false
		}
	}
	return acc, true
}

// unionOf collects the union of the postings lists for each requested code.
func unionOf(lookup func(string) []string, codes []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, code := range codes {
		for _, slug := range lookup(code) {
			set[slug] = struct{}{}
		}
	}
	return set
}

// intersect combines the specified dimensions, smallest set first.
func intersect(dims []map[string]struct{}) map[string]struct{} {
	sort.Slice(dims, func(i, j int) bool { return len(dims[i]) < len(dims[j]) })

	result := dims[0]
	for _, dim := range dims[1:] {
		for slug := range result {
			if _, ok := dim[slug]; !ok {
				delete(result, slug)
			}
		}
		if len(result) == 0 {
			break
		}
	}
	return result
}
