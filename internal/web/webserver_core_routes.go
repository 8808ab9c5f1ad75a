package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// MaxFormBytes limits the size of posted form bodies
const MaxFormBytes = 1 << 20

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/static/*filepath", EmbeddedStaticHandler("/static"))
	s.Router.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Topic pages
	s.Router.GET("/", s.homePage)
	s.Router.GET("/create", s.createPage)
	s.Router.GET("/update", s.updatePage)
	s.Router.POST("/create-process", s.createProcess)
	s.Router.POST("/update-process", s.updateProcess)
	s.Router.POST("/delete-process", s.deleteProcess)

	// Read-only JSON API
	api := s.Router.Group("/api/v1")
	{
		api.GET("/topics", s.apiListTopics)
		api.GET("/topics/:id", s.apiGetTopic)
	}

	// Author management, only for stores with an author relation
	if s.Authors != nil {
		s.Router.GET("/author", s.authorsPage)
		s.Router.GET("/author/update", s.authorUpdatePage)
		s.Router.POST("/author/create-process", s.authorCreateProcess)
		s.Router.POST("/author/update-process", s.authorUpdateProcess)
		s.Router.POST("/author/delete-process", s.authorDeleteProcess)
		api.GET("/authors", s.apiListAuthors)
	}

	s.Router.NoRoute(s.notFound)
}

// notFound answers unknown routes with a plain 404
func (s *WebServer) notFound(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodPost:
		c.String(http.StatusNotFound, "%s: Not Found", c.Request.Method)
	default:
		c.String(http.StatusNotFound, "Method: Not Found")
	}
}

// Start starts the web server with SSL support if configured.
// Returns http.ErrServerClosed after Shutdown.
func (s *WebServer) Start() error {
	addr := ":" + strconv.Itoa(s.Config.ListenPort)

	s.mux.Lock()
	s.StartTime = time.Now() // Set the start time for uptime calculations
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.srv
	s.mux.Unlock()

	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s (%s)", addr, s.Config.BaseURL)
		return srv.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	}
	log.Printf("[WEB]: Starting HTTP server on %s (%s)", addr, s.Config.BaseURL)
	return srv.ListenAndServe()
}

// Shutdown gracefully stops a started server
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	srv := s.srv
	s.mux.Unlock()
	if srv == nil {
		return nil
	}
	log.Printf("[WEB]: Shutting down web server...")
	return srv.Shutdown(ctx)
}

// Uptime returns how long the server has been running
func (s *WebServer) Uptime() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime)
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

// ApacheLogFormat logs requests in Apache combined log format
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

// LimitFormBody caps the request body of form posts
func LimitFormBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && strings.EqualFold(c.Request.Method, http.MethodPost) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
