package webpage

import (
	"cmp"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

type pageMeta struct {
	Title       string
	OGTitle     string
	Description string
}

func (m pageMeta) title() string {
	return cmp.Or(m.Title, m.OGTitle)
}

// extractMeta streams the document head and stops at </head> or <body>, so
// every description candidate is compared. Malformed markup is tolerated;
// only read errors are returned, together with whatever was found.
func extractMeta(r io.Reader) (pageMeta, error) {
	var meta pageMeta
	z := html.NewTokenizer(r)

	for {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return meta, nil
			}
			return meta, z.Err()

		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "head" {
				return meta, nil
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()

			switch string(name) {
			case "body":
				return meta, nil

			case "title":
				if tt == html.SelfClosingTagToken || meta.Title != "" {
					continue
				}
				if z.Next() == html.TextToken {
					meta.Title = collapseSpace(string(z.Text()))
				}

			case "meta":
				if hasAttr {
					readMetaTag(z, &meta)
				}
			}
		}
	}
}

func readMetaTag(z *html.Tokenizer, meta *pageMeta) {
	var name, property, content string
	for {
		key, val, more := z.TagAttr()
		switch strings.ToLower(string(key)) {
		case "name":
			name = strings.ToLower(strings.TrimSpace(string(val)))
		case "property":
			property = strings.ToLower(strings.TrimSpace(string(val)))
		case "content":
			content = collapseSpace(string(val))
		}
		if !more {
			break
		}
	}

	if content == "" {
		return
	}

	switch {
	case property == "og:title" || name == "og:title":
		if meta.OGTitle == "" {
			meta.OGTitle = content
		}
	case name == "description" || property == "og:description" || name == "og:description":
		if len(content) > len(meta.Description) {
			meta.Description = content
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
