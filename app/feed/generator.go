package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"
)

const atomNS = "http://www.w3.org/2005/Atom"

type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

// Run serializes meta and entries as one Atom document. updated is the
// feed-level <updated> value.
func (g *Generator) Run(meta Meta, entries []Entry, updated time.Time) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf(`<feed xmlns="%s">`, atomNS))
	buf.WriteString("\n")

	g.writeElement(&buf, "id", meta.ID, 2)
	g.writeElement(&buf, "title", meta.Title, 2)
	g.writeElement(&buf, "subtitle", meta.Subtitle, 2)
	g.writeElement(&buf, "updated", formatTime(updated), 2)

	if meta.Link != "" {
		buf.WriteString(fmt.Sprintf("  <link rel=\"alternate\" href=\"%s\" />\n", html.EscapeString(meta.Link)))
	}

	if meta.Author != "" {
		buf.WriteString("  <author>\n")
		g.writeElement(&buf, "name", meta.Author, 4)
		buf.WriteString("  </author>\n")
	}

	buf.WriteString(fmt.Sprintf("  <generator version=\"%s\">rss-later</generator>\n", html.EscapeString(g.version)))

	for _, entry := range entries {
		g.writeEntry(&buf, entry)
	}

	buf.WriteString("</feed>\n")

	return buf.Bytes()
}

func (g *Generator) writeEntry(buf *bytes.Buffer, entry Entry) {
	buf.WriteString("  <entry>\n")

	g.writeElement(buf, "id", entry.ID, 4)
	g.writeElement(buf, "title", entry.Title, 4)
	buf.WriteString(fmt.Sprintf("    <link rel=\"alternate\" href=\"%s\" />\n", html.EscapeString(entry.URL)))
	g.writeElement(buf, "published", formatTime(entry.PublishedAt), 4)
	g.writeElement(buf, "updated", formatTime(entry.PublishedAt), 4)

	if entry.Description != "" {
		buf.WriteString("    <summary type=\"html\">")
		xml.EscapeText(buf, []byte(entry.Description))
		buf.WriteString("</summary>\n")
	}

	buf.WriteString("  </entry>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
