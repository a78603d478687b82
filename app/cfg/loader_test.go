package cfg

import (
	"strings"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// Version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadServeDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"serve", "/tmp/feed.xml"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Command != CommandServe {
		t.Errorf("Expected command 'serve', got '%s'", cfg.Command)
	}
	if cfg.FeedPath != "/tmp/feed.xml" {
		t.Errorf("Expected feed path '/tmp/feed.xml', got '%s'", cfg.FeedPath)
	}
	if cfg.ListenAddr() != "127.0.0.1:8001" {
		t.Errorf("Expected listen address '127.0.0.1:8001', got '%s'", cfg.ListenAddr())
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %v", cfg.FetchTimeout)
	}
	if cfg.MaxRedirects != 10 {
		t.Errorf("Expected 10 redirects, got %d", cfg.MaxRedirects)
	}
	if cfg.MaxBodySize != 2<<20 {
		t.Errorf("Expected max body size %d, got %d", 2<<20, cfg.MaxBodySize)
	}
	if cfg.ShutdownGrace != 10*time.Second {
		t.Errorf("Expected shutdown grace 10s, got %v", cfg.ShutdownGrace)
	}
	if !strings.HasPrefix(cfg.UserAgent, "rss-later/") {
		t.Errorf("Expected default user agent, got '%s'", cfg.UserAgent)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PRIVATE_TOKEN", "private-token-from-env")
	t.Setenv("FEED_TOKEN", "feed-token-from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("FETCH_TIMEOUT", "5")
	t.Setenv("REJECT_DUPLICATES", "true")

	cfg, err := LoadArgs([]string{"--debug", "serve", "feed.xml"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.PrivateToken != "private-token-from-env" {
		t.Errorf("Expected private token from env, got '%s'", cfg.PrivateToken)
	}
	if cfg.FeedToken != "feed-token-from-env" {
		t.Errorf("Expected feed token from env, got '%s'", cfg.FeedToken)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("Expected fetch timeout 5s, got %v", cfg.FetchTimeout)
	}
	if !cfg.RejectDuplicates {
		t.Error("Expected duplicate rejection to be enabled")
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadCommands(t *testing.T) {
	cfg, err := LoadArgs([]string{"gen-token"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Command != CommandGenToken {
		t.Errorf("Expected command 'gen-token', got '%s'", cfg.Command)
	}

	cfg, err = LoadArgs([]string{"fetch", "https://example.com/"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Command != CommandFetch {
		t.Errorf("Expected command 'fetch', got '%s'", cfg.Command)
	}
	if cfg.FetchURL != "https://example.com/" {
		t.Errorf("Expected fetch URL 'https://example.com/', got '%s'", cfg.FetchURL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing command", []string{}},
		{"serve without path", []string{"serve"}},
		{"zero timeout", []string{"--fetch-timeout", "0", "serve", "feed.xml"}},
		{"negative redirects", []string{"--max-redirects", "-1", "serve", "feed.xml"}},
		{"zero burst", []string{"--submit-burst", "0", "serve", "feed.xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadArgs(tt.args)
			if err == nil {
				t.Errorf("Expected error, got config %+v", cfg)
			}
		})
	}
}
