package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-topics/internal/models"
)

func (s *WebServer) apiListTopics(c *gin.Context) {
	topics, err := s.Topics.ListTopics(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	if topics == nil {
		topics = []*models.Topic{}
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *WebServer) apiGetTopic(c *gin.Context) {
	topic, err := s.Topics.GetTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (s *WebServer) apiListAuthors(c *gin.Context) {
	authors, err := s.Authors.ListAuthors(c.Request.Context())
	if err != nil {
		s.apiError(c, err)
		return
	}
	if authors == nil {
		authors = []*models.Author{}
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors})
}

// apiError answers with a JSON error, internal details stay in the log
func (s *WebServer) apiError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[WEB]: API error %s: %v", c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
