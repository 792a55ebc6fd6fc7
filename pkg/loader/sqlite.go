// Package loader builds catalog snapshots from the SQLite database produced
// by the scraping pipeline and installs them into the catalog store. The
// database is only ever opened read-only; all writes belong to the pipeline.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crocdb/crocdb-api/pkg/catalog"
	"github.com/crocdb/crocdb-api/pkg/infrastructure/logging"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteLoader reads the catalog database and assembles immutable snapshots.
type SQLiteLoader struct {
	path string
	log  *logging.Logger
}

// NewSQLiteLoader creates a loader for the catalog database at path.
func NewSQLiteLoader(path string) *SQLiteLoader {
	return &SQLiteLoader{
		path: path,
		log:  logging.GetGlobalLogger().WithComponent("loader"),
	}
}

// Path returns the catalog database path.
func (l *SQLiteLoader) Path() string {
	return l.path
}

// Load reads the full catalog and builds a snapshot. The five tables are
// read concurrently on separate connections; assembly happens once all
// reads finish.
func (l *SQLiteLoader) Load(ctx context.Context) (*catalog.Snapshot, error) {
	start := time.Now()

	db, err := sql.Open("sqlite3", "file:"+l.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	defer db.Close()

	var (
		rows      []entryRow
		links     map[string][]catalog.Link
		regions   map[string][]string
		platforms map[string]catalog.Platform
		regDict   map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = loadEntries(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		links, err = loadLinks(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		regions, err = loadEntryRegions(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		platforms, err = loadPlatforms(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		regDict, err = loadRegions(gctx, db)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]catalog.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, catalog.Entry{
			Slug:      row.slug,
			RomID:     row.romID,
			Title:     row.title,
			Platform:  row.platform,
			BoxartURL: row.boxartURL,
			Regions:   regions[row.slug],
			Links:     links[row.slug],
		})
	}

	snap, err := catalog.NewSnapshot(entries, platforms, regDict)
	if err != nil {
		return nil, err
	}

	l.log.Info("catalog snapshot built", map[string]interface{}{
		"entries":   snap.Len(),
		"platforms": len(platforms),
		"regions":   len(regDict),
		"elapsed":   time.Since(start).Round(time.Millisecond).String(),
	})
	return snap, nil
}

// LoadAndInstall builds a snapshot and installs it into the store.
func (l *SQLiteLoader) LoadAndInstall(ctx context.Context, store *catalog.Store) error {
	snap, err := l.Load(ctx)
	if err != nil {
		return err
	}
	store.Install(snap)
	return nil
}

type entryRow struct {
	slug      string
	romID     string
	title     string
	platform  string
	boxartURL string
}

func loadEntries(ctx context.Context, db *sql.DB) ([]entryRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT slug, rom_id, title, platform, boxart_url
		FROM entries
	`)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	defer rows.Close()

	var entries []entryRow
	for rows.Next() {
		var row entryRow
		var romID, boxart sql.NullString
		if err := rows.Scan(&row.slug, &romID, &row.title, &row.platform, &boxart); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		row.romID = romID.String
		row.boxartURL = boxart.String
		entries = append(entries, row)
	}
	return entries, rows.Err()
}

func loadLinks(ctx context.Context, db *sql.DB) (map[string][]catalog.Link, error) {
	// rowid order preserves the pipeline's link ordering per entry.
	rows, err := db.QueryContext(ctx, `
		SELECT entry, name, type, format, url, filename, host, size, size_str, source_url
		FROM links
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", err)
	}
	defer rows.Close()

	links := make(map[string][]catalog.Link)
	for rows.Next() {
		var entry string
		var link catalog.Link
		var size sql.NullInt64
		if err := rows.Scan(&entry, &link.Name, &link.Type, &link.Format, &link.URL,
			&link.Filename, &link.Host, &size, &link.SizeStr, &link.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		link.Size = size.Int64
		links[entry] = append(links[entry], link)
	}
	return links, rows.Err()
}

func loadEntryRegions(ctx context.Context, db *sql.DB) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT entry, region
		FROM regions_entries
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("loading entry regions: %w", err)
	}
	defer rows.Close()

	regions := make(map[string][]string)
	for rows.Next() {
		var entry, region string
		if err := rows.Scan(&entry, &region); err != nil {
			return nil, fmt.Errorf("scanning entry region: %w", err)
		}
		regions[entry] = append(regions[entry], region)
	}
	return regions, rows.Err()
}

func loadPlatforms(ctx context.Context, db *sql.DB) (map[string]catalog.Platform, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, brand, name
		FROM platforms
	`)
	if err != nil {
		return nil, fmt.Errorf("loading platforms: %w", err)
	}
	defer rows.Close()

	platforms := make(map[string]catalog.Platform)
	for rows.Next() {
		var id string
		var p catalog.Platform
		if err := rows.Scan(&id, &p.Brand, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning platform: %w", err)
		}
		platforms[id] = p
	}
	return platforms, rows.Err()
}

func loadRegions(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name
		FROM regions
	`)
	if err != nil {
		return nil, fmt.Errorf("loading regions: %w", err)
	}
	defer rows.Close()

	regions := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		regions[id] = name
	}
	return regions, rows.Err()
}
