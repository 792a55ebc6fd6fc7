package loader

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crocdb/crocdb-api/pkg/catalog"
)

const fixtureSchema = `
CREATE TABLE entries (
	slug TEXT PRIMARY KEY,
	rom_id TEXT,
	title TEXT NOT NULL,
	platform TEXT NOT NULL,
	boxart_url TEXT
);
CREATE TABLE links (
	entry TEXT NOT NULL,
	name TEXT,
	type TEXT,
	format TEXT,
	url TEXT,
	filename TEXT,
	host TEXT,
	size INTEGER,
	size_str TEXT,
	source_url TEXT
);
CREATE TABLE regions_entries (
	entry TEXT NOT NULL,
	region TEXT NOT NULL
);
CREATE TABLE platforms (
	id TEXT PRIMARY KEY,
	brand TEXT,
	name TEXT
);
CREATE TABLE regions (
	id TEXT PRIMARY KEY,
	name TEXT
);
`

func createFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roms.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO entries (slug, rom_id, title, platform, boxart_url) VALUES
			('super-mario-world-us', 'SNS-MW-USA', 'Super Mario World', 'snes', 'https://cdn.example/smw.png'),
			('tetris-gb-jp', NULL, 'Tetris', 'gb', NULL);
		INSERT INTO links (entry, name, type, format, url, filename, host, size, size_str, source_url) VALUES
			('super-mario-world-us', 'Super Mario World (USA)', 'game', 'sfc', 'https://host.example/smw.zip', 'smw.zip', 'host.example', 524288, '512 KiB', 'https://source.example/smw'),
			('super-mario-world-us', 'Super Mario World (USA) [alt]', 'game', 'sfc', 'https://mirror.example/smw.zip', 'smw.zip', 'mirror.example', NULL, '', '');
		INSERT INTO regions_entries (entry, region) VALUES
			('super-mario-world-us', 'us'),
			('tetris-gb-jp', 'jp');
		INSERT INTO platforms (id, brand, name) VALUES
			('snes', 'Nintendo', 'Super Nintendo'),
			('gb', 'Nintendo', 'Game Boy');
		INSERT INTO regions (id, name) VALUES
			('us', 'USA'),
			('jp', 'Japan');
	`)
	require.NoError(t, err)
	return path
}

func TestLoad(t *testing.T) {
	loader := NewSQLiteLoader(createFixture(t))

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())

	entry, ok := snap.Entry("super-mario-world-us")
	require.True(t, ok)
	assert.Equal(t, "Super Mario World", entry.Title)
	assert.Equal(t, "SNS-MW-USA", entry.RomID)
	assert.Equal(t, "snes", entry.Platform)
	assert.Equal(t, []string{"us"}, entry.Regions)
	require.Len(t, entry.Links, 2)
	assert.Equal(t, "host.example", entry.Links[0].Host)
	assert.Equal(t, int64(524288), entry.Links[0].Size)
	assert.Equal(t, int64(0), entry.Links[1].Size)

	// NULL columns come through as empty values, not errors.
	entry, ok = snap.Entry("tetris-gb-jp")
	require.True(t, ok)
	assert.Empty(t, entry.RomID)
	assert.Empty(t, entry.BoxartURL)
	assert.Empty(t, entry.Links)

	assert.Equal(t, "Super Nintendo", snap.Platforms()["snes"].Name)
	assert.Equal(t, "Japan", snap.Regions()["jp"])
}

func TestLoadAndInstall(t *testing.T) {
	loader := NewSQLiteLoader(createFixture(t))
	store := catalog.NewStore()

	require.False(t, store.Ready())
	require.NoError(t, loader.LoadAndInstall(context.Background(), store))
	require.True(t, store.Ready())

	snap, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
}

func TestLoadMissingDatabase(t *testing.T) {
	loader := NewSQLiteLoader(filepath.Join(t.TempDir(), "missing.db"))

	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}
