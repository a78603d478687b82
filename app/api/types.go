package api

import (
	"context"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-later/app/auth"
	"github.com/lysyi3m/rss-later/app/feed"
	"github.com/lysyi3m/rss-later/app/metrics"
	"github.com/lysyi3m/rss-later/app/webpage"
)

type FetcherInterface interface {
	Fetch(ctx context.Context, rawURL string) webpage.Result
}

var _ FetcherInterface = (*webpage.Fetcher)(nil)

type StoreInterface interface {
	Append(draft feed.Draft) (feed.Entry, error)
	Render() feed.Snapshot
	Len() int
}

var _ StoreInterface = (*feed.Store)(nil)

type Handler struct {
	store        StoreInterface
	fetcher      FetcherInterface
	tokens       auth.Tokens
	metrics      *metrics.Metrics
	version      string
	fetchTimeout time.Duration
}

type ServerOptions struct {
	// BaseURL is shown on the index page; the request host is used when empty
	BaseURL     string
	SubmitRate  float64
	SubmitBurst int
	// Metrics is mounted at /metrics when set
	Metrics http.Handler
}

// requestError is a rejected request with the status and message sent back.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

var (
	errMissingContentType   = &requestError{http.StatusBadRequest, "Missing Content-Type"}
	errUnsupportedMediaType = &requestError{http.StatusUnsupportedMediaType, "Unsupported media type"}
	errUnsupportedCharset   = &requestError{http.StatusUnsupportedMediaType, "Unsupported character set"}
	errBodyTooLarge         = &requestError{http.StatusRequestEntityTooLarge, "Request body too large"}
	errMalformedBody        = &requestError{http.StatusBadRequest, "Malformed request body"}
	errMissingToken         = &requestError{http.StatusBadRequest, "Missing token"}
	errInvalidToken         = &requestError{http.StatusForbidden, "Invalid token"}
	errInvalidURL           = &requestError{http.StatusBadRequest, "Invalid URL"}
)
