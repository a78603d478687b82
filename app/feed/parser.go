package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
)

type Parser struct {
	atomParser *atom.Parser
}

func NewParser() *Parser {
	return &Parser{
		atomParser: &atom.Parser{},
	}
}

// Run parses an Atom document previously written by Generator. Entries are
// returned in document order, which is newest first.
func (p *Parser) Run(data []byte) (Meta, []Entry, error) {
	doc, err := p.atomParser.Parse(bytes.NewReader(data))
	if err != nil {
		return Meta{}, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	meta := Meta{
		ID:       doc.ID,
		Title:    doc.Title,
		Subtitle: doc.Subtitle,
	}
	if len(doc.Authors) > 0 && doc.Authors[0] != nil {
		meta.Author = doc.Authors[0].Name
	}
	if link := alternateLink(doc.Links); link != "" {
		meta.Link = link
	}

	entries := make([]Entry, 0, len(doc.Entries))
	for i, item := range doc.Entries {
		entry, err := p.normalizeEntry(item)
		if err != nil {
			return Meta{}, nil, fmt.Errorf("invalid entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	return meta, entries, nil
}

func (p *Parser) normalizeEntry(item *atom.Entry) (Entry, error) {
	if item == nil {
		return Entry{}, fmt.Errorf("empty entry")
	}
	if item.ID == "" {
		return Entry{}, fmt.Errorf("entry has no id")
	}

	link := alternateLink(item.Links)
	if link == "" {
		return Entry{}, fmt.Errorf("entry %s has no link", item.ID)
	}

	published, err := p.parseTime(item.Published, item.PublishedParsed, item.Updated, item.UpdatedParsed)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", item.ID, err)
	}

	description := item.Summary
	if description == "" && item.Content != nil {
		description = item.Content.Value
	}

	return Entry{
		ID:          item.ID,
		URL:         link,
		Title:       cmp.Or(strings.TrimSpace(item.Title), link),
		Description: description,
		PublishedAt: published,
	}, nil
}

func (p *Parser) parseTime(published string, publishedParsed *time.Time, updated string, updatedParsed *time.Time) (time.Time, error) {
	for _, raw := range []string{published, updated} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}

	if publishedParsed != nil {
		return publishedParsed.UTC(), nil
	}
	if updatedParsed != nil {
		return updatedParsed.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("missing or invalid timestamp")
}

func alternateLink(links []*atom.Link) string {
	var first string
	for _, link := range links {
		if link == nil || link.Href == "" {
			continue
		}
		if link.Rel == "" || link.Rel == "alternate" {
			return link.Href
		}
		if first == "" {
			first = link.Href
		}
	}
	return first
}
