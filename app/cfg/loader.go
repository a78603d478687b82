package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type serveCommand struct {
	Args struct {
		FeedPath string `positional-arg-name:"FEED_PATH" description:"Path of the Atom feed file"`
	} `positional-args:"yes" required:"yes"`
}

type genTokenCommand struct{}

type fetchCommand struct {
	Args struct {
		URL string `positional-arg-name:"URL" description:"Page to fetch"`
	} `positional-args:"yes" required:"yes"`
}

type rawCfg struct {
	// Server configuration
	Address       string `long:"address" env:"ADDRESS" default:"127.0.0.1" description:"Address to listen on"`
	Port          string `long:"port" env:"PORT" default:"8001" description:"HTTP server port"`
	BaseUrl       string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://later.example.com)"`
	ShutdownGrace int    `long:"shutdown-grace" env:"SHUTDOWN_GRACE" default:"10" description:"Seconds to wait for in-flight requests on shutdown"`
	Metrics       bool   `long:"metrics" env:"METRICS" description:"Expose Prometheus metrics on /metrics"`

	// Tokens
	PrivateToken string `long:"private-token" env:"PRIVATE_TOKEN" description:"Token authorizing link submissions"`
	FeedToken    string `long:"feed-token" env:"FEED_TOKEN" description:"Token embedded in the feed URL"`

	// Feed configuration
	FeedMetaPath     string `long:"feed-meta" env:"FEED_META" description:"YAML file with feed title, subtitle, author and link"`
	RejectDuplicates bool   `long:"reject-duplicates" env:"REJECT_DUPLICATES" description:"Ignore links already present in the feed"`

	// Fetcher configuration
	UserAgent       string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Page fetch timeout in seconds"`
	MaxRedirects    int    `long:"max-redirects" env:"MAX_REDIRECTS" default:"10" description:"Maximum redirects followed when fetching a page"`
	MaxBodySize     int64  `long:"max-body-size" env:"MAX_BODY_SIZE" default:"2097152" description:"Maximum page size in bytes"`
	ExcerptFallback bool   `long:"excerpt-fallback" env:"EXCERPT_FALLBACK" description:"Derive a description from the page body when it has no meta description"`

	// Submission limits
	SubmitRate  float64 `long:"submit-rate" env:"SUBMIT_RATE" default:"2" description:"Sustained POST requests per second"`
	SubmitBurst int     `long:"submit-burst" env:"SUBMIT_BURST" default:"10" description:"POST request burst size"`

	// Application metadata
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Serve    serveCommand    `command:"serve" description:"Serve the feed and accept new links"`
	GenToken genTokenCommand `command:"gen-token" description:"Print a new random token"`
	Fetch    fetchCommand    `command:"fetch" description:"Fetch a page and print the metadata that would be stored"`
}

var globalCfg *Cfg

// Load parses command-line arguments and environment variables.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs is Load with explicit arguments; nil means os.Args[1:].
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("failed to parse configuration: no command given")
	}

	cfg := &Cfg{
		Command:          Command(parser.Active.Name),
		Address:          raw.Address,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		ShutdownGrace:    time.Duration(raw.ShutdownGrace) * time.Second,
		Metrics:          raw.Metrics,
		PrivateToken:     raw.PrivateToken,
		FeedToken:        raw.FeedToken,
		FeedPath:         raw.Serve.Args.FeedPath,
		FeedMetaPath:     raw.FeedMetaPath,
		RejectDuplicates: raw.RejectDuplicates,
		UserAgent:        raw.UserAgent,
		FetchTimeout:     time.Duration(raw.FetchTimeout) * time.Second,
		MaxRedirects:     raw.MaxRedirects,
		MaxBodySize:      raw.MaxBodySize,
		ExcerptFallback:  raw.ExcerptFallback,
		SubmitRate:       raw.SubmitRate,
		SubmitBurst:      raw.SubmitBurst,
		FetchURL:         raw.Fetch.Args.URL,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("rss-later/%s (+https://github.com/lysyi3m/rss-later)", cfg.Version)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if cfg.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must be non-negative")
	}
	if cfg.MaxBodySize <= 0 {
		return fmt.Errorf("max body size must be positive")
	}
	if cfg.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown grace must be non-negative")
	}
	if cfg.SubmitRate <= 0 || cfg.SubmitBurst <= 0 {
		return fmt.Errorf("submit rate and burst must be positive")
	}
	return nil
}
