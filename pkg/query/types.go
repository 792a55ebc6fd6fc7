// Package query implements the catalog query engine: it compiles a search
// request into a predicate over the current snapshot's index, evaluates it
// into a deterministically ordered slug sequence, and pages the result.
package query

import "github.com/crocdb/crocdb-api/pkg/catalog"

// Result-size bounds. Out-of-range values are saturated, not rejected.
const (
	MinMaxResults     = 1
	MaxMaxResults     = 100
	DefaultMaxResults = 100
	DefaultPage       = 1
)

// Query is one search request. It is transient — built per request and never
// stored. Absent/empty dimensions impose no restriction.
type Query struct {
	// SearchKey is matched against normalized titles: every key token must
	// appear as a substring.
	SearchKey string `json:"search_key,omitempty"`

	// Platforms restricts to entries on any of the given platform codes.
	Platforms []string `json:"platforms,omitempty"`

	// Regions restricts to entries carrying any of the given region codes.
	Regions []string `json:"regions,omitempty"`

	// RomID restricts to the single entry with this exact rom_id. Other
	// filters still apply as additional constraints against it.
	RomID string `json:"rom_id,omitempty"`

	// MaxResults is the page size, saturated into [1, 100]. Zero means the
	// default of 100.
	MaxResults int `json:"max_results,omitempty"`

	// Page is the 1-based page number. Zero means page 1; negative values
	// are rejected as invalid.
	Page int `json:"page,omitempty"`
}

// SearchResults is one page of matching entries plus pagination counters.
type SearchResults struct {
	Results        []*catalog.Entry `json:"results"`
	CurrentResults int              `json:"current_results"`
	TotalResults   int              `json:"total_results"`
	CurrentPage    int              `json:"current_page"`
	TotalPages     int              `json:"total_pages"`
}

// Info reports snapshot-wide catalog statistics.
type Info struct {
	TotalEntries int `json:"total_entries"`
}
