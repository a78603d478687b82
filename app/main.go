package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lysyi3m/rss-later/app/api"
	"github.com/lysyi3m/rss-later/app/auth"
	"github.com/lysyi3m/rss-later/app/cfg"
	"github.com/lysyi3m/rss-later/app/feed"
	"github.com/lysyi3m/rss-later/app/metrics"
	"github.com/lysyi3m/rss-later/app/shutdown"
	"github.com/lysyi3m/rss-later/app/webpage"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	switch appCfg.Command {
	case cfg.CommandGenToken:
		err = genToken()
	case cfg.CommandFetch:
		err = fetch()
	default:
		err = serve()
	}

	if err != nil {
		slog.Error("Fatal error", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

func genToken() error {
	token, err := auth.Generate(auth.DefaultTokenLength)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func newFetcher() *webpage.Fetcher {
	appCfg := cfg.Get()

	return webpage.NewFetcher(webpage.Options{
		Timeout:         appCfg.FetchTimeout,
		MaxRedirects:    appCfg.MaxRedirects,
		MaxBodySize:     appCfg.MaxBodySize,
		UserAgent:       appCfg.UserAgent,
		ExcerptFallback: appCfg.ExcerptFallback,
	})
}

// fetch prints what would be stored for a link without touching the feed.
func fetch() error {
	appCfg := cfg.Get()

	ctx, cancel := context.WithTimeout(context.Background(), appCfg.FetchTimeout)
	defer cancel()

	result := newFetcher().Fetch(ctx, appCfg.FetchURL)

	fmt.Printf("Kind:        %s\n", result.Kind)
	fmt.Printf("Title:       %s\n", result.Title)
	fmt.Printf("Description: %s\n", result.Description)
	if result.Embed != nil {
		fmt.Printf("Embed:       %s %s\n", result.Embed.Provider, result.Embed.PlayerURL)
	}
	if result.Err != nil {
		fmt.Printf("Error:       %v\n", result.Err)
	}

	return nil
}

func serve() error {
	appCfg := cfg.Get()

	tokens := auth.Tokens{Private: appCfg.PrivateToken, Feed: appCfg.FeedToken}
	if err := tokens.Validate(); err != nil {
		return err
	}

	slog.Info("Starting rss-later", "version", appCfg.Version, "feed", appCfg.FeedPath)

	meta, err := feed.LoadMeta(appCfg.FeedMetaPath)
	if err != nil {
		return err
	}

	store, err := feed.Open(appCfg.FeedPath, meta,
		feed.WithVersion(appCfg.Version),
		feed.WithRejectDuplicates(appCfg.RejectDuplicates))
	if err != nil {
		return err
	}
	slog.Info("Feed loaded", "path", store.Path(), "entries", store.Len())

	m := metrics.New()
	handler := api.NewHandler(store, newFetcher(), tokens, m, appCfg.Version, appCfg.FetchTimeout)

	opts := api.ServerOptions{
		BaseURL:     appCfg.BaseUrl,
		SubmitRate:  appCfg.SubmitRate,
		SubmitBurst: appCfg.SubmitBurst,
	}
	if appCfg.Metrics {
		opts.Metrics = m.Handler()
	}

	// A submission may spend the whole fetch timeout before responding
	writeTimeout := appCfg.FetchTimeout + 30*time.Second

	httpServer := &http.Server{
		Addr:         appCfg.ListenAddr(),
		Handler:      api.NewServer(handler, opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	slog.Info("Starting HTTP server", "addr", httpServer.Addr, "metrics", appCfg.Metrics)

	if err := shutdown.Serve(ctx, httpServer, appCfg.ShutdownGrace); err != nil {
		return err
	}

	slog.Info("rss-later shutdown complete")
	return nil
}
