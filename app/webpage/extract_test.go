package webpage

import (
	"io"
	"strings"
	"testing"
)

func TestExtractMeta(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		title       string
		description string
	}{
		{
			name:        "title and description",
			html:        `<html><head><title>Example Page</title><meta name="description" content="An example"></head><body></body></html>`,
			title:       "Example Page",
			description: "An example",
		},
		{
			name:  "entities and whitespace",
			html:  "<head><title>\n   Tom &amp; Jerry&#39;s\n   show </title></head>",
			title: "Tom & Jerry's show",
		},
		{
			name:        "og fallbacks",
			html:        `<head><meta property="og:title" content="OG Title"><meta property="og:description" content="OG &amp; description"></head>`,
			title:       "OG Title",
			description: "OG & description",
		},
		{
			name:        "title wins over og title",
			html:        `<head><meta property="og:title" content="OG Title"><title>Real Title</title></head>`,
			title:       "Real Title",
			description: "",
		},
		{
			name:        "longest description wins",
			html:        `<head><meta name="description" content="Short"><meta property="og:description" content="A much longer description"><title>T</title></head>`,
			title:       "T",
			description: "A much longer description",
		},
		{
			name:        "og description after title and description",
			html:        `<head><title>T</title><meta name="description" content="Short"><meta property="og:description" content="The longer one"></head>`,
			title:       "T",
			description: "The longer one",
		},
		{
			name:        "stops at end of head",
			html:        `<head><title>T</title></head><meta name="description" content="Outside head">`,
			title:       "T",
			description: "",
		},
		{
			name:        "uppercase tags and attributes",
			html:        `<HEAD><TITLE>Upper</TITLE><META NAME="Description" CONTENT="Loud"></HEAD>`,
			title:       "Upper",
			description: "Loud",
		},
		{
			name:        "malformed markup",
			html:        `<html><head><meta name=description content=unquoted><title>Still works</title><div><p>unclosed`,
			title:       "Still works",
			description: "unquoted",
		},
		{
			name:  "stops at body",
			html:  `<html><head></head><body><title>Not a title</title></body></html>`,
			title: "",
		},
		{
			name:  "first title only",
			html:  `<head><title>First</title><title>Second</title></head>`,
			title: "First",
		},
		{
			name:  "empty document",
			html:  "",
			title: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := extractMeta(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if meta.title() != tt.title {
				t.Errorf("Expected title '%s', got '%s'", tt.title, meta.title())
			}
			if meta.Description != tt.description {
				t.Errorf("Expected description '%s', got '%s'", tt.description, meta.Description)
			}
		})
	}
}

// stopReader fails the test if the extractor reads past the marker.
type stopReader struct {
	t    *testing.T
	data string
	pos  int
}

func (r *stopReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		r.t.Error("Expected extraction to stop before reading the whole document")
		return 0, io.EOF
	}
	// hand out small chunks so the tokenizer cannot read ahead much
	n := copy(p[:min(len(p), 16)], r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestExtractMetaStopsEarly(t *testing.T) {
	doc := `<head><title>Early</title><meta name="description" content="Found"></head>` +
		strings.Repeat("<!-- padding -->", 100)

	meta, err := extractMeta(&stopReader{t: t, data: doc})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if meta.Title != "Early" || meta.Description != "Found" {
		t.Errorf("Expected Early/Found, got %s/%s", meta.Title, meta.Description)
	}
}
