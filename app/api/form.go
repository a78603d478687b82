package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/htmlindex"
	"mvdan.cc/xurls/v2"
)

const maxFormSize = 1 << 20

var linkPattern = mustLinkPattern()

func mustLinkPattern() *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		panic(fmt.Sprintf("failed to create regexp: %v", err))
	}
	return re
}

// readForm checks the content type and parses a bounded urlencoded body.
func readForm(c *gin.Context) (url.Values, *requestError) {
	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		return nil, errMissingContentType
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/x-www-form-urlencoded" {
		return nil, errUnsupportedMediaType
	}

	if name, ok := params["charset"]; ok {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, errUnsupportedCharset
		}
		if canonical, _ := htmlindex.Name(enc); canonical != "utf-8" {
			return nil, errUnsupportedCharset
		}
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormSize)
	if err := c.Request.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errMalformedBody
	}

	return c.Request.PostForm, nil
}

// validateLink accepts a single absolute http(s) URL. xurls only anchors the
// scheme at the start; url.Parse decides syntax, so trailing punctuation that
// xurls would strip from prose is still accepted.
func validateLink(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsFunc(raw, unicode.IsSpace) {
		return "", false
	}

	if loc := linkPattern.FindStringIndex(raw); loc == nil || loc[0] != 0 {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}

	return raw, true
}
