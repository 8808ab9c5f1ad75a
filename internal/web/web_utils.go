package web

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-topics/internal/config"
	"github.com/go-while/go-topics/internal/models"
)

// getBaseTemplateData creates a TemplateData struct with the topic list shown on every page
func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) (TemplateData, error) {
	data := TemplateData{
		Title:       title,
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		AppVersion:  config.AppVersion,
		HasAuthors:  s.Authors != nil,
	}
	topics, err := s.Topics.ListTopics(c.Request.Context())
	if err != nil {
		return data, err
	}
	data.Topics = topics
	return data, nil
}

// renderTemplate renders a page into a buffer first so failed templates never send half a page
func (s *WebServer) renderTemplate(c *gin.Context, statusCode int, templateName string, data interface{}) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		s.renderError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "unknown template "+templateName)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("[WEB]: Error rendering template %s: %v", templateName, err)
		s.renderError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err.Error())
		return
	}
	c.Data(statusCode, "text/html; charset=utf-8", buf.Bytes())
}

// renderError renders an error page.
// Details of 5xx errors are logged but never shown to the client.
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	log.Printf("[WEB]: Error %d: %s - %s", statusCode, message, errstring)

	// a broken store must not prevent the error page itself
	base, _ := s.getBaseTemplateData(c, "Error")
	errorData := ErrorPageData{
		TemplateData: base,
		Error:        message,
		StatusCode:   statusCode,
	}
	if statusCode < http.StatusInternalServerError {
		errorData.Detail = errstring
	}

	var buf bytes.Buffer
	if err := s.templates["error.html"].ExecuteTemplate(&buf, "base.html", errorData); err != nil {
		log.Printf("[WEB]: Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
		return
	}
	c.Data(statusCode, "text/html; charset=utf-8", buf.Bytes())
}

// statusForError maps storage and validation errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrTopicNotFound), errors.Is(err, models.ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTopicExists), errors.Is(err, models.ErrAuthorInUse):
		return http.StatusConflict
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
}

// handleError renders the error page that fits err
func (s *WebServer) handleError(c *gin.Context, err error) {
	status := statusForError(err)
	message := http.StatusText(status)
	s.renderError(c, status, message, err.Error())
}

// parsePostForm parses the request body before PostForm is used.
// gin's PostForm drops parse errors, an oversized body would read as empty fields.
func parsePostForm(c *gin.Context) error {
	err := c.Request.ParseForm()
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
}

// topicURL returns the view URL of a topic
func topicURL(id string) string {
	return "/?id=" + url.QueryEscape(id)
}
