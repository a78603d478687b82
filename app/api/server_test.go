package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	w := get(env.router, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}

	text := doc.Text()
	if !strings.Contains(text, "Feed available at https://rss.example.com/feed/<FEED_TOKEN>") {
		t.Errorf("Expected feed URL pattern on the index page, got: %s", text)
	}
	if strings.Contains(w.Body.String(), testFeedToken) || strings.Contains(w.Body.String(), testPrivateToken) {
		t.Error("Index page must not reveal tokens")
	}
}

func TestIndexPageUsesRequestHost(t *testing.T) {
	handler := NewHandler(failingStore{}, &fakeFetcher{}, testTokens, nil, "dev", time.Second)
	router := NewServer(handler, ServerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost:8001"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "http://localhost:8001/feed/") {
		t.Errorf("Expected feed URL based on the request host, got: %s", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	w := postForm(env.router, "/add", url.Values{"url": {"https://example.com/"}, "token": {testPrivateToken}})
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin '*', got '%s'", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req := httptest.NewRequest(http.MethodOptions, "/add", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Expected Access-Control-Allow-Methods on preflight")
	}
}

func TestRateLimit(t *testing.T) {
	handler := NewHandler(failingStore{}, &fakeFetcher{}, testTokens, nil, "1.2.3", time.Second)
	router := NewServer(handler, ServerOptions{SubmitRate: 0.001, SubmitBurst: 2})

	values := url.Values{"token": {testPrivateToken}}
	for i := 0; i < 2; i++ {
		if w := postForm(router, "/info", values); w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 within burst, got %d", w.Code)
		}
	}

	if w := postForm(router, "/info", values); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after burst, got %d", w.Code)
	}

	if w := get(router, "/feed/"+testFeedToken, nil); w.Code == http.StatusTooManyRequests {
		t.Error("Expected feed reads not to be rate limited")
	}
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})
	postForm(env.router, "/add", url.Values{"url": {"https://example.com/"}, "token": {testPrivateToken}})

	w := get(env.router, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `rss_later_submissions_total{result="added"} 1`) {
		t.Errorf("Expected submission counter in exposition, got: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "rss_later_feed_entries 1") {
		t.Errorf("Expected entries gauge in exposition")
	}

	handler := NewHandler(failingStore{}, &fakeFetcher{}, testTokens, nil, "1.2.3", time.Second)
	router := NewServer(handler, ServerOptions{})
	if w := get(router, "/metrics", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected /metrics to be disabled, got %d", w.Code)
	}
}

func TestFavicon(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{})

	if w := get(env.router, "/favicon.ico", nil); w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestValidateLink(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"https://example.com/a", true},
		{"http://example.com", true},
		{"  https://example.com/a?x=1&y=2#frag  ", true},
		{"HTTPS://EXAMPLE.COM/", true},
		{"http://127.0.0.1:8080/path", true},
		{"https://example.com/foo.", true},
		{"https://example.com/list,", true},
		{"https://example.com/?q=a:", true},
		{"https://example.com/wow!", true},
		{"https://example.com/path'", true},
		{"https://example.com/a b", false},
		{"see https://example.com/a", false},
		{"https://exa mple.com/", false},
		{"https:///path", false},
		{"mailto:user@example.com", false},
		{"javascript:alert(1)", false},
		{"", false},
	}

	for _, tt := range tests {
		_, valid := validateLink(tt.input)
		if valid != tt.valid {
			t.Errorf("validateLink(%q): expected %v, got %v", tt.input, tt.valid, valid)
		}
	}
}
