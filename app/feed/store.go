package feed

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicate = errors.New("link is already in the feed")

type Option func(*Store)

// WithClock sets the time source used for PublishedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithRejectDuplicates makes Append return ErrDuplicate for a URL already in the feed.
func WithRejectDuplicates(reject bool) Option {
	return func(s *Store) {
		s.rejectDuplicates = reject
	}
}

// WithVersion sets the generator version written into the document.
func WithVersion(version string) Option {
	return func(s *Store) {
		s.generator = NewGenerator(version)
	}
}

// Store owns the feed document and its file. All mutations go through Append.
type Store struct {
	path             string
	meta             Meta
	generator        *Generator
	now              func() time.Time
	rejectDuplicates bool

	// write is replaced in tests to simulate persistence failures
	write func(path string, data []byte) error

	mu       sync.RWMutex
	entries  []Entry
	snapshot Snapshot
}

// Open loads the feed at path, or creates an empty one if the file does not
// exist. An existing file that is not a valid feed is an error.
// Non-empty fields of meta override what is stored in the file.
func Open(path string, meta Meta, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		generator: NewGenerator("dev"),
		now:       time.Now,
		write:     writeFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.meta = mergeMeta(Meta{}, meta)
		if err := s.initEmpty(); err != nil {
			return nil, err
		}
		slog.Info("Created empty feed", "path", path)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}

	storedMeta, entries, err := NewParser().Run(data)
	if err != nil {
		return nil, fmt.Errorf("feed file %s is not a valid feed: %w", path, err)
	}

	if len(entries) > MaxEntries {
		slog.Warn("Feed exceeds retention cap, keeping newest entries",
			"path", path, "entries", len(entries), "max_entries", MaxEntries)
		entries = entries[:MaxEntries]
	}

	s.meta = mergeMeta(storedMeta, meta)
	s.entries = entries
	s.snapshot = s.render(entries, s.updatedAt(entries))

	slog.Info("Loaded feed", "path", path, "entries", len(entries))

	return s, nil
}

func (s *Store) initEmpty() error {
	snapshot := s.render(nil, s.now().UTC())
	if err := s.write(s.path, snapshot.Body); err != nil {
		return fmt.Errorf("failed to write initial feed: %w", err)
	}
	s.snapshot = snapshot
	return nil
}

// Append commits a new entry at the front of the feed and persists the whole
// document before returning. On error the feed is unchanged.
func (s *Store) Append(draft Draft) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectDuplicates {
		for _, existing := range s.entries {
			if existing.URL == draft.URL {
				return existing, ErrDuplicate
			}
		}
	}

	// Entries are cleaned so the copy in memory equals the one read back from disk
	title := cmp.Or(cleanText(draft.Title), draft.URL)
	description := cleanText(draft.Description)

	published := s.now().UTC()
	if len(s.entries) > 0 && published.Before(s.entries[0].PublishedAt) {
		published = s.entries[0].PublishedAt
	}

	entry := Entry{
		ID:          "urn:uuid:" + uuid.NewString(),
		URL:         draft.URL,
		Title:       title,
		Description: description,
		PublishedAt: published,
	}

	// Insert then truncate: the dropped entry is the oldest of the MaxEntries+1
	keep := min(len(s.entries), MaxEntries-1)
	next := make([]Entry, 0, keep+1)
	next = append(next, entry)
	next = append(next, s.entries[:keep]...)

	snapshot := s.render(next, published)
	if err := s.write(s.path, snapshot.Body); err != nil {
		slog.Error("Failed to persist feed", "path", s.path, "url", draft.URL, "error", err)
		return Entry{}, fmt.Errorf("failed to save feed: %w", err)
	}

	if evicted := len(s.entries) - keep; evicted > 0 {
		slog.Debug("Evicted oldest entries", "count", evicted)
	}

	s.entries = next
	s.snapshot = snapshot

	return entry, nil
}

// Render returns the serialized document. The returned bytes must not be modified.
func (s *Store) Render() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Entries returns a copy of the entries, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *Store) Meta() Meta {
	return s.meta
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) render(entries []Entry, updated time.Time) Snapshot {
	body := s.generator.Run(s.meta, entries, updated)
	sum := sha256.Sum256(body)

	return Snapshot{
		Body:      body,
		UpdatedAt: updated,
		Count:     len(entries),
		ETag:      `"` + hex.EncodeToString(sum[:16]) + `"`,
	}
}

func (s *Store) updatedAt(entries []Entry) time.Time {
	if len(entries) > 0 {
		return entries[0].PublishedAt
	}
	if info, err := os.Stat(s.path); err == nil {
		return info.ModTime().UTC()
	}
	return s.now().UTC()
}

func mergeMeta(stored, override Meta) Meta {
	merged := stored
	if override.Title != "" {
		merged.Title = override.Title
	}
	if override.Subtitle != "" {
		merged.Subtitle = override.Subtitle
	}
	if override.Author != "" {
		merged.Author = override.Author
	}
	if override.Link != "" {
		merged.Link = override.Link
	}
	if merged.ID == "" {
		merged.ID = "urn:uuid:" + uuid.NewString()
	}
	if merged.Title == "" {
		merged.Title = DefaultTitle
	}
	if merged.Author == "" {
		merged.Author = DefaultAuthor
	}
	return merged
}
