package feed

import (
	"time"
)

// MaxEntries is the retention cap of the feed document.
const MaxEntries = 50

// Entry is one collected link. Entries are never modified once appended.
type Entry struct {
	ID          string
	URL         string
	Title       string
	Description string // HTML, may contain an embedded player
	PublishedAt time.Time
}

// Draft is a candidate entry; the store assigns ID and PublishedAt.
type Draft struct {
	URL         string
	Title       string
	Description string
}

// Meta is feed-level metadata.
type Meta struct {
	ID       string `yaml:"-"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Author   string `yaml:"author"`
	Link     string `yaml:"link"`
}

// Snapshot is a complete serialization of the document at one point in time.
type Snapshot struct {
	Body      []byte
	UpdatedAt time.Time
	Count     int
	ETag      string // strong validator of Body
}
