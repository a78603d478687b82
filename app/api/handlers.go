package api

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-later/app/auth"
	"github.com/lysyi3m/rss-later/app/feed"
	"github.com/lysyi3m/rss-later/app/metrics"
	"github.com/lysyi3m/rss-later/app/webpage"
)

func NewHandler(store StoreInterface, fetcher FetcherInterface, tokens auth.Tokens,
	m *metrics.Metrics, version string, fetchTimeout time.Duration) *Handler {
	if m == nil {
		m = metrics.New()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = webpage.DefaultTimeout
	}

	m.SetEntries(store.Len())

	return &Handler{
		store:        store,
		fetcher:      fetcher,
		tokens:       tokens,
		metrics:      m,
		version:      version,
		fetchTimeout: fetchTimeout,
	}
}

func (h *Handler) AddLink(c *gin.Context) {
	form, reqErr := readForm(c)
	if reqErr != nil {
		h.metrics.Submission(metrics.ResultError)
		c.String(reqErr.status, reqErr.message)
		return
	}

	if reqErr := h.checkToken(c, form.Get("token")); reqErr != nil {
		if reqErr == errMissingToken {
			h.metrics.Submission(metrics.ResultMissingToken)
		} else {
			h.metrics.Submission(metrics.ResultInvalidToken)
		}
		c.String(reqErr.status, reqErr.message)
		return
	}

	link, ok := validateLink(form.Get("url"))
	if !ok {
		h.metrics.Submission(metrics.ResultInvalidURL)
		c.String(errInvalidURL.status, errInvalidURL.message)
		return
	}

	result := h.fetch(c.Request.Context(), link)

	entry, err := h.store.Append(buildDraft(link, form.Get("title"), result))
	if errors.Is(err, feed.ErrDuplicate) {
		slog.Info("Link already in feed", "url", link, "id", entry.ID)
		h.metrics.Submission(metrics.ResultDuplicate)
		c.String(http.StatusOK, "Duplicate\n")
		return
	}
	if err != nil {
		h.metrics.PersistFailure()
		h.metrics.Submission(metrics.ResultError)
		c.String(http.StatusInternalServerError, "Error saving feed file")
		return
	}

	h.metrics.Submission(metrics.ResultAdded)
	h.metrics.SetEntries(h.store.Len())

	slog.Info("Link added",
		"id", entry.ID,
		"url", entry.URL,
		"title", entry.Title,
		"kind", result.Kind.String())

	c.String(http.StatusCreated, "Added\n")
}

// fetch runs outside of any store lock and never fails the request.
func (h *Handler) fetch(ctx context.Context, link string) webpage.Result {
	ctx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
	defer cancel()

	start := time.Now()
	result := h.fetcher.Fetch(ctx, link)
	h.metrics.Fetch(result.Kind.String(), result.Failed(), time.Since(start))

	if result.Err != nil {
		slog.Info("Failed to fetch page metadata", "url", link, "error", result.Err)
	}

	return result
}

// buildDraft applies the title rule: a caller title is used as given, then
// the fetched title, then the URL itself. A blank caller title counts as none.
func buildDraft(link, title string, result webpage.Result) feed.Draft {
	title = strings.TrimSpace(title)
	if title == "" {
		title = cmp.Or(result.Title, link)
	}

	return feed.Draft{
		URL:         link,
		Title:       title,
		Description: result.Description,
	}
}

func (h *Handler) Info(c *gin.Context) {
	form, reqErr := readForm(c)
	if reqErr == nil {
		reqErr = h.checkToken(c, form.Get("token"))
	}
	if reqErr != nil {
		c.JSON(reqErr.status, gin.H{
			"status":  "error",
			"message": reqErr.message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *Handler) checkToken(c *gin.Context, token string) *requestError {
	if token == "" {
		return errMissingToken
	}
	if !h.tokens.VerifyPrivate(token) {
		slog.Warn("Invalid token", "path", c.FullPath(), "remote_addr", c.Request.RemoteAddr)
		return errInvalidToken
	}
	return nil
}

func (h *Handler) GetFeed(c *gin.Context) {
	if !h.tokens.VerifyFeed(c.Param("token")) {
		slog.Warn("Invalid feed token", "remote_addr", c.Request.RemoteAddr)
		h.metrics.FeedRead(http.StatusNotFound)
		c.Status(http.StatusNotFound)
		return
	}

	snapshot := h.store.Render()
	lastModified := snapshot.UpdatedAt.UTC().Truncate(time.Second)

	c.Header("Last-Modified", lastModified.Format(http.TimeFormat))
	c.Header("ETag", snapshot.ETag)

	if notModified(c.Request, snapshot.ETag, lastModified) {
		h.metrics.FeedRead(http.StatusNotModified)
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("X-Feed-Entries", strconv.Itoa(snapshot.Count))

	h.metrics.FeedRead(http.StatusOK)
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", snapshot.Body)
}

// notModified evaluates the request validators. If-None-Match takes
// precedence; Last-Modified has only second precision, so two appends in
// the same second are told apart by the ETag alone.
func notModified(r *http.Request, etag string, lastModified time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		for _, candidate := range strings.Split(inm, ",") {
			candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
			if candidate == "*" || candidate == etag {
				return true
			}
		}
		return false
	}

	since, err := http.ParseTime(r.Header.Get("If-Modified-Since"))
	return err == nil && !lastModified.After(since)
}
