package query

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crocdb/crocdb-api/pkg/catalog"
)

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	entries := []catalog.Entry{
		{Slug: "super-mario-world-us", RomID: "SNS-MW-USA", Title: "Super Mario World", Platform: "snes", Regions: []string{"us"}},
		{Slug: "super-mario-world-eu", Title: "Super Mario World", Platform: "snes", Regions: []string{"eu"}},
		{Slug: "mario-kart-64-us", RomID: "NUS-NKTE-USA", Title: "Mario Kart 64", Platform: "n64", Regions: []string{"us"}},
		{Slug: "paper-mario-us", Title: "Paper Mario", Platform: "n64", Regions: []string{"us"}},
		{Slug: "zelda-ocarina-us", Title: "The Legend of Zelda: Ocarina of Time", Platform: "n64", Regions: []string{"us", "eu"}},
		{Slug: "pokemon-red-us", Title: "Pokémon Red Version", Platform: "gb", Regions: []string{"us"}},
		{Slug: "tetris-gb-jp", Title: "Tetris", Platform: "gb", Regions: []string{"jp"}},
	}
	platforms := map[string]catalog.Platform{
		"snes": {Brand: "Nintendo", Name: "Super Nintendo"},
		"n64":  {Brand: "Nintendo", Name: "Nintendo 64"},
		"gb":   {Brand: "Nintendo", Name: "Game Boy"},
	}
	regions := map[string]string{"us": "USA", "eu": "Europe", "jp": "Japan"}

	snap, err := catalog.NewSnapshot(entries, platforms, regions)
	require.NoError(t, err)
	return snap
}

func testEngine(t *testing.T) (*Engine, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore()
	store.Install(testSnapshot(t))
	return NewEngine(store), store
}

func resultSlugs(results *SearchResults) []string {
	slugs := make([]string, 0, len(results.Results))
	for _, e := range results.Results {
		slugs = append(slugs, e.Slug)
	}
	return slugs
}

func TestSearchNotReady(t *testing.T) {
	engine := NewEngine(catalog.NewStore())

	_, err := engine.Search(Query{})
	assert.True(t, errors.Is(err, catalog.ErrNotReady))
	_, err = engine.Entry("anything")
	assert.True(t, errors.Is(err, catalog.ErrNotReady))
	_, err = engine.RandomEntry()
	assert.True(t, errors.Is(err, catalog.ErrNotReady))
	_, err = engine.Info()
	assert.True(t, errors.Is(err, catalog.ErrNotReady))
}

func TestSearchUnfiltered(t *testing.T) {
	engine, _ := testEngine(t)

	results, err := engine.Search(Query{})
	require.NoError(t, err)

	// Everything, in (title, slug) order.
	assert.Equal(t, []string{
		"mario-kart-64-us",
		"paper-mario-us",
		"pokemon-red-us",
		"super-mario-world-eu",
		"super-mario-world-us",
		"tetris-gb-jp",
		"zelda-ocarina-us",
	}, resultSlugs(results))
	assert.Equal(t, 7, results.TotalResults)
	assert.Equal(t, 7, results.CurrentResults)
	assert.Equal(t, 1, results.CurrentPage)
	assert.Equal(t, 1, results.TotalPages)
}

func TestSearchKeyTokensAnd(t *testing.T) {
	engine, _ := testEngine(t)

	// Every token must match; "mario" alone matches four entries.
	results, err := engine.Search(Query{SearchKey: "mario"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"mario-kart-64-us",
		"paper-mario-us",
		"super-mario-world-eu",
		"super-mario-world-us",
	}, resultSlugs(results))

	// Adding "world" narrows to the entries matching both.
	results, err = engine.Search(Query{SearchKey: "mario world"})
	require.NoError(t, err)
	assert.Equal(t, []string{"super-mario-world-eu", "super-mario-world-us"}, resultSlugs(results))

	// Tokens match anywhere in the title, as substrings.
	results, err = engine.Search(Query{SearchKey: "ario kart"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mario-kart-64-us"}, resultSlugs(results))

	// No entry satisfies all tokens.
	results, err = engine.Search(Query{SearchKey: "mario zelda"})
	require.NoError(t, err)
	assert.Empty(t, results.Results)
	assert.Equal(t, 0, results.TotalResults)
	assert.Equal(t, 1, results.TotalPages)
}

func TestSearchKeyNormalization(t *testing.T) {
	engine, _ := testEngine(t)

	// Accented key matches the accented title after both sides normalize.
	results, err := engine.Search(Query{SearchKey: "POKÉMON red"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pokemon-red-us"}, resultSlugs(results))

	results, err = engine.Search(Query{SearchKey: "pokemon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pokemon-red-us"}, resultSlugs(results))
}

func TestSearchFilterComposition(t *testing.T) {
	engine, _ := testEngine(t)

	// OR within the platform dimension.
	results, err := engine.Search(Query{Platforms: []string{"snes", "gb"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pokemon-red-us",
		"super-mario-world-eu",
		"super-mario-world-us",
		"tetris-gb-jp",
	}, resultSlugs(results))

	// AND across dimensions.
	results, err = engine.Search(Query{Platforms: []string{"snes"}, Regions: []string{"us"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"super-mario-world-us"}, resultSlugs(results))

	results, err = engine.Search(Query{SearchKey: "mario", Platforms: []string{"n64"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mario-kart-64-us", "paper-mario-us"}, resultSlugs(results))

	// Unknown codes are empty sets, not errors.
	results, err = engine.Search(Query{Platforms: []string{"ps2"}})
	require.NoError(t, err)
	assert.Empty(t, results.Results)

	results, err = engine.Search(Query{Platforms: []string{"ps2", "gb"}, Regions: []string{"jp"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"tetris-gb-jp"}, resultSlugs(results))
}

func TestSearchPlatformUnion(t *testing.T) {
	engine, _ := testEngine(t)

	snes, err := engine.Search(Query{Platforms: []string{"snes"}})
	require.NoError(t, err)
	n64, err := engine.Search(Query{Platforms: []string{"n64"}})
	require.NoError(t, err)
	both, err := engine.Search(Query{Platforms: []string{"snes", "n64"}})
	require.NoError(t, err)

	// The two-code query is exactly the union of the single-code queries,
	// deduplicated and in catalog order.
	assert.Equal(t, len(snes.Results)+len(n64.Results), len(both.Results))
	union := make(map[string]struct{})
	for _, slug := range append(resultSlugs(snes), resultSlugs(n64)...) {
		union[slug] = struct{}{}
	}
	for _, slug := range resultSlugs(both) {
		_, ok := union[slug]
		assert.True(t, ok, "unexpected slug %s", slug)
	}
	for _, e := range both.Results {
		assert.Contains(t, []string{"snes", "n64"}, e.Platform)
	}
}

func TestSearchRomID(t *testing.T) {
	engine, _ := testEngine(t)

	results, err := engine.Search(Query{RomID: "SNS-MW-USA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"super-mario-world-us"}, resultSlugs(results))

	// Unknown rom_id short-circuits to an empty result.
	results, err = engine.Search(Query{RomID: "NOPE"})
	require.NoError(t, err)
	assert.Empty(t, results.Results)

	// Other dimensions still constrain the rom_id hit.
	results, err = engine.Search(Query{RomID: "SNS-MW-USA", Platforms: []string{"n64"}})
	require.NoError(t, err)
	assert.Empty(t, results.Results)

	results, err = engine.Search(Query{RomID: "SNS-MW-USA", Platforms: []string{"snes"}, SearchKey: "mario"})
	require.NoError(t, err)
	assert.Equal(t, []string{"super-mario-world-us"}, resultSlugs(results))
}

func TestSearchPagination(t *testing.T) {
	engine, _ := testEngine(t)

	results, err := engine.Search(Query{MaxResults: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, results.CurrentResults)
	assert.Equal(t, 7, results.TotalResults)
	assert.Equal(t, 3, results.TotalPages)

	// Page zero means the first page.
	defaulted, err := engine.Search(Query{MaxResults: 3, Page: 0})
	require.NoError(t, err)
	assert.Equal(t, resultSlugs(results), resultSlugs(defaulted))

	last, err := engine.Search(Query{MaxResults: 3, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"zelda-ocarina-us"}, resultSlugs(last))
	assert.Equal(t, 1, last.CurrentResults)

	// Past the end: empty page, not an error.
	beyond, err := engine.Search(Query{MaxResults: 3, Page: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Results)
	assert.Equal(t, 0, beyond.CurrentResults)
	assert.Equal(t, 7, beyond.TotalResults)
	assert.Equal(t, 3, beyond.TotalPages)
	assert.Equal(t, 9, beyond.CurrentPage)

	// A page number big enough to overflow the slice arithmetic still comes
	// back as an empty page with honest counters, never a panic.
	huge, err := engine.Search(Query{Page: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, huge.Results)
	assert.Equal(t, 0, huge.CurrentResults)
	assert.Equal(t, 7, huge.TotalResults)
	assert.Equal(t, 1, huge.TotalPages)
	assert.Equal(t, math.MaxInt, huge.CurrentPage)

	huge, err = engine.Search(Query{Page: 1 << 62, MaxResults: 100})
	require.NoError(t, err)
	assert.Empty(t, huge.Results)
	assert.Equal(t, 0, huge.CurrentResults)

	// Negative pages cannot be normalized.
	_, err = engine.Search(Query{Page: -1})
	assert.True(t, errors.Is(err, catalog.ErrInvalidArgument))

	// Oversized page size saturates rather than failing.
	big, err := engine.Search(Query{MaxResults: 10000})
	require.NoError(t, err)
	assert.Equal(t, 7, big.CurrentResults)
	assert.Equal(t, 1, big.TotalPages)
}

func TestSearchDeterministic(t *testing.T) {
	engine, _ := testEngine(t)
	q := Query{SearchKey: "mario", MaxResults: 2, Page: 2}

	first, err := engine.Search(q)
	require.NoError(t, err)
	second, err := engine.Search(q)
	require.NoError(t, err)
	assert.Equal(t, resultSlugs(first), resultSlugs(second))
}

func TestSearchSnapshotIsolation(t *testing.T) {
	engine, store := testEngine(t)

	before, err := engine.Search(Query{SearchKey: "tetris"})
	require.NoError(t, err)
	assert.Len(t, before.Results, 1)

	snap, err := catalog.NewSnapshot([]catalog.Entry{
		{Slug: "tetris-gb-jp", Title: "Tetris", Platform: "gb", Regions: []string{"jp"}},
		{Slug: "tetris-nes-us", Title: "Tetris", Platform: "nes", Regions: []string{"us"}},
	}, nil, nil)
	require.NoError(t, err)
	store.Install(snap)

	after, err := engine.Search(Query{SearchKey: "tetris"})
	require.NoError(t, err)
	assert.Len(t, after.Results, 2)
}

func TestEntry(t *testing.T) {
	engine, _ := testEngine(t)

	entry, err := engine.Entry("zelda-ocarina-us")
	require.NoError(t, err)
	assert.Equal(t, "The Legend of Zelda: Ocarina of Time", entry.Title)

	_, err = engine.Entry("missing-slug")
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}

func TestRandomEntry(t *testing.T) {
	engine, _ := testEngine(t)

	// Any draw must be a member of the catalog.
	for i := 0; i < 20; i++ {
		entry, err := engine.RandomEntry()
		require.NoError(t, err)
		_, err = engine.Entry(entry.Slug)
		require.NoError(t, err)
	}
}

func TestRandomEntrySingle(t *testing.T) {
	store := catalog.NewStore()
	snap, err := catalog.NewSnapshot([]catalog.Entry{{Slug: "only", Title: "Only"}}, nil, nil)
	require.NoError(t, err)
	store.Install(snap)
	engine := NewEngine(store)

	entry, err := engine.RandomEntry()
	require.NoError(t, err)
	assert.Equal(t, "only", entry.Slug)
}

func TestRandomEntryEmpty(t *testing.T) {
	store := catalog.NewStore()
	snap, err := catalog.NewSnapshot(nil, nil, nil)
	require.NoError(t, err)
	store.Install(snap)
	engine := NewEngine(store)

	_, err = engine.RandomEntry()
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}

func TestDictionariesAndInfo(t *testing.T) {
	engine, _ := testEngine(t)

	platforms, err := engine.Platforms()
	require.NoError(t, err)
	assert.Equal(t, "Nintendo 64", platforms["n64"].Name)

	regions, err := engine.Regions()
	require.NoError(t, err)
	assert.Equal(t, "Japan", regions["jp"])

	info, err := engine.Info()
	require.NoError(t, err)
	assert.Equal(t, 7, info.TotalEntries)
}
