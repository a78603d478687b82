package cfg

import "time"

type Command string

const (
	CommandServe    Command = "serve"
	CommandGenToken Command = "gen-token"
	CommandFetch    Command = "fetch"
)

type Cfg struct {
	Command Command

	// Server configuration
	Address       string
	Port          string
	BaseUrl       string
	ShutdownGrace time.Duration
	Metrics       bool

	// Tokens
	PrivateToken string
	FeedToken    string

	// Feed configuration
	FeedPath         string
	FeedMetaPath     string
	RejectDuplicates bool

	// Fetcher configuration
	UserAgent       string
	FetchTimeout    time.Duration
	MaxRedirects    int
	MaxBodySize     int64
	ExcerptFallback bool

	// Submission limits
	SubmitRate  float64
	SubmitBurst int

	// Arguments of the fetch command
	FetchURL string

	// Application metadata
	Debug   bool
	Version string
}

func (c *Cfg) ListenAddr() string {
	return c.Address + ":" + c.Port
}
