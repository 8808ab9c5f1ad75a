// Package web provides the HTTP server and web interface for go-topics
package web

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-topics/internal/config"
	"github.com/go-while/go-topics/internal/models"
)

// TopicStore is the storage adapter behind the topic pages.
// Implemented by filestore.FileStore and database.Database.
type TopicStore interface {
	ListTopics(ctx context.Context) ([]*models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	CreateTopic(ctx context.Context, t *models.Topic) (string, error)
	UpdateTopic(ctx context.Context, id string, t *models.Topic) (string, error)
	DeleteTopic(ctx context.Context, id string) error
}

// AuthorStore is implemented by stores that keep a separate author relation
type AuthorStore interface {
	ListAuthors(ctx context.Context) ([]*models.Author, error)
	GetAuthor(ctx context.Context, id int64) (*models.Author, error)
	CreateAuthor(ctx context.Context, a *models.Author) (int64, error)
	UpdateAuthor(ctx context.Context, a *models.Author) error
	DeleteAuthor(ctx context.Context, id int64) error
}

// WebServer represents the web server
type WebServer struct {
	Topics    TopicStore
	Authors   AuthorStore // nil if the store has no author relation
	Router    *gin.Engine
	Config    *config.WebConfig
	StartTime time.Time // Track server start time for uptime calculations

	templates map[string]*template.Template
	mux       sync.Mutex
	srv       *http.Server
}

// TemplateData represents common template data
type TemplateData struct {
	Title       string
	CurrentTime string
	AppVersion  string
	Topics      []*models.Topic
	HasAuthors  bool
}

// TopicPageData represents data for the topic view ("/")
type TopicPageData struct {
	TemplateData
	Topic   *models.Topic // nil on the welcome page
	Heading string
	Body    template.HTML
}

// FormPageData represents data for the create and update forms
type FormPageData struct {
	TemplateData
	Action         string
	Topic          *models.Topic
	Authors        []*models.Author
	SelectedAuthor int64
}

// AuthorsPageData represents data for the author management page
type AuthorsPageData struct {
	TemplateData
	Authors []*models.Author
	Action  string
	Edit    *models.Author // author being updated, nil for the create form
}

// ErrorPageData represents data for the error page
type ErrorPageData struct {
	TemplateData
	Error      string
	Detail     string
	StatusCode int
}

// NewServer creates a new web server instance.
// Author pages are enabled if topics also implements AuthorStore.
func NewServer(topics TopicStore, webconfig *config.WebConfig) *WebServer {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)
	if webconfig.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Configure Gin to trust reverse proxy headers
	router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	server := &WebServer{
		Topics:    topics,
		Router:    router,
		Config:    webconfig,
		templates: mustLoadTemplates(),
	}
	if authors, ok := topics.(AuthorStore); ok {
		server.Authors = authors
	}

	router.Use(server.ReverseProxyMiddleware())
	router.Use(server.ApacheLogFormat())
	router.Use(gin.Recovery())
	router.Use(secure.New(secureConfig))
	router.Use(LimitFormBody(MaxFormBytes))

	server.setupRoutes()
	log.Printf("[WEB]: Server created authors=%t ssl=%t", server.Authors != nil, webconfig.SSL)
	return server
}

// mustLoadTemplates parses the base layout together with every page template
func mustLoadTemplates() map[string]*template.Template {
	pages := []string{"index.html", "form.html", "authors.html", "error.html"}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		templates[page] = template.Must(template.ParseFS(EmbeddedTemplatesFS, "templates/base.html", "templates/"+page))
	}
	return templates
}
