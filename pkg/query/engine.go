package query

import (
	"github.com/crocdb/crocdb-api/pkg/catalog"
	"github.com/crocdb/crocdb-api/pkg/infrastructure/logging"
)

// Engine answers catalog queries against the store's current snapshot. Every
// operation grabs the snapshot reference once, so a concurrent snapshot
// install never changes a request's view mid-evaluation. The engine itself
// is stateless and safe for concurrent use.
type Engine struct {
	store *catalog.Store
	log   *logging.Logger
}

// NewEngine creates a query engine over the given store.
func NewEngine(store *catalog.Store) *Engine {
	return &Engine{
		store: store,
		log:   logging.GetGlobalLogger().WithComponent("query"),
	}
}

// Search runs a filtered, paginated catalog search. Identical queries
// against an unchanged snapshot return identical results, including
// pagination. A negative page is the one parameter that cannot be
// normalized and yields ErrInvalidArgument.
func (e *Engine) Search(q Query) (*SearchResults, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}

	if q.Page < 0 {
		return nil, catalog.InvalidArgumentf("page must be at least 1, got %d", q.Page)
	}
	pageNum := q.Page
	if pageNum == 0 {
		pageNum = DefaultPage
	}
	maxResults := clampMaxResults(q.MaxResults)

	slugs := evaluate(snap, q)
	p := paginate(len(slugs), pageNum, maxResults)

	results := make([]*catalog.Entry, 0, p.currentResults)
	for _, slug := range slugs[p.start:p.end] {
		entry, ok := snap.Entry(slug)
		if !ok {
			// Index and entry table come from the same snapshot; a miss
			// here would mean a corrupted build.
			e.log.Error("indexed slug missing from snapshot", map[string]interface{}{"slug": slug})
			continue
		}
		results = append(results, entry)
	}

	return &SearchResults{
		Results:        results,
		CurrentResults: p.currentResults,
		TotalResults:   p.totalResults,
		CurrentPage:    p.currentPage,
		TotalPages:     p.totalPages,
	}, nil
}

// Entry returns the entry with the given slug, or ErrNotFound.
func (e *Engine) Entry(slug string) (*catalog.Entry, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}
	entry, ok := snap.Entry(slug)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return entry, nil
}

// RandomEntry returns one entry drawn uniformly from the current snapshot,
// or ErrNotFound when the catalog is empty.
func (e *Engine) RandomEntry() (*catalog.Entry, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}
	return randomEntry(snap)
}

// Platforms returns the current snapshot's platform dictionary.
func (e *Engine) Platforms() (map[string]catalog.Platform, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}
	return snap.Platforms(), nil
}

// Regions returns the current snapshot's region dictionary.
func (e *Engine) Regions() (map[string]string, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}
	return snap.Regions(), nil
}

// Info returns snapshot-wide statistics.
func (e *Engine) Info() (*Info, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}
	return &Info{TotalEntries: snap.Len()}, nil
}
