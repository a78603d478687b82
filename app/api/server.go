package api

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

//go:embed templates/index.html
var templatesFS embed.FS

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, opts ServerOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(accessLogMiddleware())
	r.Use(gin.Recovery())

	// Bookmarklets and browser extensions post from other origins
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/index.html")))

	setupRoutes(r, handler, opts)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, opts ServerOptions) {
	submit := r.Group("/")
	submit.Use(rateLimitMiddleware(opts.SubmitRate, opts.SubmitBurst))
	{
		submit.POST("/add", handler.AddLink)
		submit.POST("/info", handler.Info)
	}

	r.GET("/feed/:token", handler.GetFeed)

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	r.GET("/", func(c *gin.Context) {
		baseURL := strings.TrimSuffix(opts.BaseURL, "/")
		if baseURL == "" {
			scheme := "http"
			if c.Request.TLS != nil {
				scheme = "https"
			}
			baseURL = scheme + "://" + c.Request.Host
		}

		c.HTML(http.StatusOK, "index.html", gin.H{
			"BaseURL": baseURL,
			"Version": handler.version,
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// accessLogMiddleware writes one record per request. The route pattern is
// logged instead of the raw path so feed tokens never reach the log.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<unmatched>"
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			attrs = append(attrs, "error", msg)
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			slog.Warn("HTTP request", attrs...)
			return
		}
		slog.Info("HTTP request", attrs...)
	}
}

// rateLimitMiddleware applies one token bucket to every request of the group.
func rateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			slog.Warn("Rate limit exceeded", "path", c.FullPath(), "remote_addr", c.Request.RemoteAddr)
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
