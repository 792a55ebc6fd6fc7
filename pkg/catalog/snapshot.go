package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// bloomFalsePositiveRate tunes the trigram filter. False positives only cost
// a wasted vocabulary scan, never a wrong result.
const bloomFalsePositiveRate = 0.01

// Snapshot is one immutable, fully-built version of the catalog plus its
// derived index. Built once, installed into a Store, read concurrently, and
// never mutated in place.
type Snapshot struct {
	entries   map[string]*Entry
	platforms map[string]Platform
	regions   map[string]string

	// ordered holds every slug sorted by (title case-insensitive, slug);
	// rank maps a slug back to its position in that order.
	ordered []string
	rank    map[string]int

	index *Index
}

// Index holds the lookup structures derived from a snapshot: a token index
// over normalized titles, platform and region postings, the rom_id table and
// a trigram bloom filter used as a fast negative check for search keys.
type Index struct {
	tokens    map[string][]string
	platforms map[string][]string
	regions   map[string][]string
	romIDs    map[string]string
	trigrams  *bloom.BloomFilter
}

// NewSnapshot builds a snapshot from pre-validated catalog data. The entries
// slice and dictionaries are owned by the snapshot after this call and must
// not be modified by the caller.
//
// Entries are assumed to come pre-validated from the loading pipeline; the
// only defensive check here is slug uniqueness, which the index build relies
// on.
func NewSnapshot(entries []Entry, platforms map[string]Platform, regions map[string]string) (*Snapshot, error) {
	if platforms == nil {
		platforms = map[string]Platform{}
	}
	if regions == nil {
		regions = map[string]string{}
	}

	s := &Snapshot{
		entries:   make(map[string]*Entry, len(entries)),
		platforms: platforms,
		regions:   regions,
		ordered:   make([]string, 0, len(entries)),
		rank:      make(map[string]int, len(entries)),
	}

	for i := range entries {
		e := &entries[i]
		if _, dup := s.entries[e.Slug]; dup {
			return nil, fmt.Errorf("building snapshot: duplicate slug %q", e.Slug)
		}
		s.entries[e.Slug] = e
		s.ordered = append(s.ordered, e.Slug)
	}

	// Deterministic ordering: title alphabetical (case-insensitive), ties
	// broken by slug. Computed once so queries traverse it sort-free.
	sort.Slice(s.ordered, func(i, j int) bool {
		a, b := s.entries[s.ordered[i]], s.entries[s.ordered[j]]
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
		return a.Slug < b.Slug
	})
	for i, slug := range s.ordered {
		s.rank[slug] = i
	}

	s.index = buildIndex(s)
	return s, nil
}

// buildIndex derives the per-snapshot lookup structures. Iterating slugs in
// rank order keeps every postings list pre-sorted by rank.
func buildIndex(s *Snapshot) *Index {
	idx := &Index{
		tokens:    make(map[string][]string),
		platforms: make(map[string][]string),
		regions:   make(map[string][]string),
		romIDs:    make(map[string]string, len(s.ordered)),
	}

	trigrams := make(map[string]struct{})

	for _, slug := range s.ordered {
		e := s.entries[slug]

		seen := make(map[string]struct{})
		for _, tok := range Tokens(Normalize(e.Title)) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			idx.tokens[tok] = append(idx.tokens[tok], slug)
			for i := 0; i+3 <= len(tok); i++ {
				trigrams[tok[i:i+3]] = struct{}{}
			}
		}

		idx.platforms[e.Platform] = append(idx.platforms[e.Platform], slug)
		for _, region := range e.Regions {
			idx.regions[region] = append(idx.regions[region], slug)
		}
		if e.RomID != "" {
			idx.romIDs[e.RomID] = slug
		}
	}

	n := uint(len(trigrams))
	if n == 0 {
		n = 1
	}
	idx.trigrams = bloom.NewWithEstimates(n, bloomFalsePositiveRate)
	for t := range trigrams {
		idx.trigrams.AddString(t)
	}

	return idx
}

// Entry returns the entry with the given slug.
func (s *Snapshot) Entry(slug string) (*Entry, bool) {
	e, ok := s.entries[slug]
	return e, ok
}

// Len returns the number of entries in the snapshot. Precomputed at build
// time; stats reads are O(1).
func (s *Snapshot) Len() int {
	return len(s.ordered)
}

// At returns the entry at position i in the snapshot's deterministic order.
func (s *Snapshot) At(i int) *Entry {
	return s.entries[s.ordered[i]]
}

// Ordered returns every slug in (title, slug) order. The returned slice is
// shared and must be treated as read-only.
func (s *Snapshot) Ordered() []string {
	return s.ordered
}

// Rank returns the position of slug in the snapshot's deterministic order.
func (s *Snapshot) Rank(slug string) (int, bool) {
	r, ok := s.rank[slug]
	return r, ok
}

// Platforms returns the platform dictionary. Read-only.
func (s *Snapshot) Platforms() map[string]Platform {
	return s.platforms
}

// Regions returns the region dictionary. Read-only.
func (s *Snapshot) Regions() map[string]string {
	return s.regions
}

// Index returns the snapshot's derived index.
func (s *Snapshot) Index() *Index {
	return s.index
}

// SlugsForPlatform returns the slugs of all entries on the given platform,
// in rank order. Unknown codes yield an empty list, not an error.
func (idx *Index) SlugsForPlatform(code string) []string {
	return idx.platforms[code]
}

// SlugsForRegion returns the slugs of all entries containing the given
// region, in rank order.
func (idx *Index) SlugsForRegion(code string) []string {
	return idx.regions[code]
}

// SlugByRomID returns the slug of the entry with the given rom_id, if any.
func (idx *Index) SlugByRomID(romID string) (string, bool) {
	slug, ok := idx.romIDs[romID]
	return slug, ok
}

// MayContain reports whether any title in the snapshot could contain tok as
// a substring. It is a bloom-filter negative check: false means no entry can
// match, true means a scan is required. Tokens shorter than a trigram always
// require a scan.
func (idx *Index) MayContain(tok string) bool {
	if len(tok) < 3 {
		return true
	}
	for i := 0; i+3 <= len(tok); i++ {
		if !idx.trigrams.TestString(tok[i : i+3]) {
			return false
		}
	}
	return true
}

// SlugsMatchingToken returns the set of slugs whose normalized title contains
// tok as a substring. Because normalized titles separate tokens with spaces
// and tok never contains one, substring containment in the title is exactly
// substring containment in at least one title token, so scanning the token
// vocabulary (much smaller than the entry set) is both complete and exact.
func (idx *Index) SlugsMatchingToken(tok string) map[string]struct{} {
	matched := make(map[string]struct{})
	for vocab, slugs := range idx.tokens {
		if strings.Contains(vocab, tok) {
			for _, slug := range slugs {
				matched[slug] = struct{}{}
			}
		}
	}
	return matched
}
