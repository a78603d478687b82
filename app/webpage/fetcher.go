package webpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
	DefaultMaxBodySize  = 2 << 20
	DefaultUserAgent    = "rss-later"
)

type Options struct {
	Timeout time.Duration
	// MaxRedirects of zero disables redirects; negative selects the default.
	MaxRedirects    int
	MaxBodySize     int64
	UserAgent       string
	ExcerptFallback bool
}

// Fetcher retrieves pages and derives entry metadata from them. It holds no
// mutable state and is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	opts    Options
	excerpt *ExcerptExtractor
}

func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects < 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	f := &Fetcher{
		opts:    opts,
		excerpt: NewExcerptExtractor(defaultExcerptLength),
	}
	f.client = &http.Client{
		Timeout:       opts.Timeout,
		CheckRedirect: f.checkRedirect,
	}

	return f
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > f.opts.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", f.opts.MaxRedirects)
	}
	return nil
}

// Fetch never returns a Go error: failures are reported in Result.Err so the
// caller can fall back to the URL. Result.Description is an HTML fragment.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Result {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Result{Err: &FetchError{URL: rawURL, Reason: "invalid URL", Err: err}}
	}

	kind, embed := classify(u)
	result := Result{Kind: kind, Embed: embed}

	meta, err := f.fetchPage(ctx, u)
	if err != nil {
		result.Err = err
	}

	result.Title = meta.title()
	result.Description = buildDescription(embed, meta.Description)

	slog.Debug("Fetched page metadata",
		"url", rawURL,
		"kind", kind.String(),
		"title", result.Title,
		"has_description", meta.Description != "",
		"error", result.Err)

	return result
}

func buildDescription(embed *Embed, text string) string {
	var description string
	if embed != nil {
		description = embed.HTML()
	}
	if text != "" {
		if description != "" {
			description += "<p>" + html.EscapeString(text) + "</p>"
		} else {
			description = html.EscapeString(text)
		}
	}
	return description
}

func (f *Fetcher) fetchPage(ctx context.Context, u *url.URL) (pageMeta, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	rawURL := u.String()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pageMeta{}, &FetchError{URL: rawURL, Reason: "failed to create request", Err: err}
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return pageMeta{}, &FetchError{URL: rawURL, Reason: "timed out", Err: err}
		}
		return pageMeta{}, &FetchError{URL: rawURL, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pageMeta{}, &FetchError{URL: rawURL, Reason: "HTTP error: " + resp.Status}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return pageMeta{}, &FetchError{URL: rawURL, Reason: fmt.Sprintf("content type is not HTML: %q", contentType)}
	}

	body := http.MaxBytesReader(nil, resp.Body, f.opts.MaxBodySize)

	decoded, err := charset.NewReader(body, contentType)
	if err != nil {
		return pageMeta{}, f.readError(rawURL, err)
	}

	var raw bytes.Buffer
	src := decoded
	if f.opts.ExcerptFallback {
		src = io.TeeReader(decoded, &raw)
	}

	meta, err := extractMeta(src)
	if err != nil {
		if meta.title() == "" {
			return meta, f.readError(rawURL, err)
		}
		slog.Debug("Partial page read", "url", rawURL, "error", err)
		return meta, nil
	}

	if meta.Description == "" && f.opts.ExcerptFallback {
		meta.Description = f.readExcerpt(u, decoded, &raw)
	}

	return meta, nil
}

// readExcerpt reads the rest of the bounded body and derives an excerpt
// from the whole document.
func (f *Fetcher) readExcerpt(u *url.URL, rest io.Reader, raw *bytes.Buffer) string {
	var tooLarge *http.MaxBytesError
	if _, err := io.Copy(raw, rest); err != nil && !errors.As(err, &tooLarge) {
		slog.Debug("Failed to read body for excerpt", "url", u.String(), "error", err)
		return ""
	}

	excerpt, err := f.excerpt.Run(raw.Bytes(), u)
	if err != nil {
		slog.Debug("No excerpt available", "url", u.String(), "error", err)
		return ""
	}

	return excerpt
}

func (f *Fetcher) readError(rawURL string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &FetchError{URL: rawURL, Reason: fmt.Sprintf("response exceeds %d bytes", f.opts.MaxBodySize), Err: err}
	}
	if isTimeout(err) {
		return &FetchError{URL: rawURL, Reason: "timed out", Err: err}
	}
	return &FetchError{URL: rawURL, Reason: "failed to read response body", Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
