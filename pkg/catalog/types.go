// Package catalog holds the ROM catalog data model and the immutable
// snapshot machinery behind it.
//
// A Snapshot is one fully-built version of the catalog: every entry, the
// platform and region dictionaries, and the derived lookup indexes. Snapshots
// are never mutated after construction; the Store swaps whole snapshots
// atomically so concurrent readers always observe a consistent catalog.
package catalog

// Entry is one catalog record describing a single game/ROM release and its
// download links. Entries are immutable once built into a snapshot.
type Entry struct {
	Slug      string   `json:"slug"`
	RomID     string   `json:"rom_id,omitempty"`
	Title     string   `json:"title"`
	Platform  string   `json:"platform"`
	BoxartURL string   `json:"boxart_url,omitempty"`
	Regions   []string `json:"regions"`
	Links     []Link   `json:"links"`
}

// Link is a single download location for an entry. It has no identity of its
// own beyond the entry that carries it.
type Link struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Format    string `json:"format"`
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	Host      string `json:"host"`
	Size      int64  `json:"size"`
	SizeStr   string `json:"size_str"`
	SourceURL string `json:"source_url"`
}

// Platform is static reference data describing a platform code.
type Platform struct {
	Brand string `json:"brand"`
	Name  string `json:"name"`
}
