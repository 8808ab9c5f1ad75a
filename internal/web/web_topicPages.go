package web

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-topics/internal/models"
)

// createPage renders an empty topic form
func (s *WebServer) createPage(c *gin.Context) {
	base, err := s.getBaseTemplateData(c, "Create")
	if err != nil {
		s.handleError(c, err)
		return
	}
	data := FormPageData{
		TemplateData: base,
		Action:       "/create-process",
	}
	if err := s.loadAuthorChoices(c, &data); err != nil {
		s.handleError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "form.html", data)
}

// updatePage renders the form prefilled with the topic given by ?id=
func (s *WebServer) updatePage(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		s.handleError(c, models.ErrTopicNotFound)
		return
	}
	topic, err := s.Topics.GetTopic(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	base, err := s.getBaseTemplateData(c, "Update")
	if err != nil {
		s.handleError(c, err)
		return
	}
	data := FormPageData{
		TemplateData:   base,
		Action:         "/update-process",
		Topic:          topic,
		SelectedAuthor: topic.AuthorID,
	}
	if err := s.loadAuthorChoices(c, &data); err != nil {
		s.handleError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "form.html", data)
}

// loadAuthorChoices fills the author select of the form if the store has authors
func (s *WebServer) loadAuthorChoices(c *gin.Context, data *FormPageData) error {
	if s.Authors == nil {
		return nil
	}
	authors, err := s.Authors.ListAuthors(c.Request.Context())
	if err != nil {
		return err
	}
	data.Authors = authors
	if data.SelectedAuthor == 0 && len(authors) > 0 {
		data.SelectedAuthor = authors[0].ID
	}
	return nil
}

// readTopicForm parses title, description and author from a posted form
func (s *WebServer) readTopicForm(c *gin.Context) (*models.Topic, error) {
	topic := &models.Topic{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if s.Authors != nil {
		if raw := strings.TrimSpace(c.PostForm("author")); raw != "" {
			authorID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || authorID <= 0 {
				return nil, fmt.Errorf("%w: bad author %q", models.ErrInvalidInput, raw)
			}
			topic.AuthorID = authorID
		}
	}
	if err := models.ValidateTopic(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// createProcess stores a new topic and redirects to it
func (s *WebServer) createProcess(c *gin.Context) {
	if err := parsePostForm(c); err != nil {
		s.handleError(c, err)
		return
	}
	topic, err := s.readTopicForm(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	id, err := s.Topics.CreateTopic(c.Request.Context(), topic)
	if err != nil {
		log.Printf("[WEB]: Failed to create topic '%s': %v", topic.Title, err)
		s.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, topicURL(id))
}

// updateProcess updates the topic given by the id field and redirects to it
func (s *WebServer) updateProcess(c *gin.Context) {
	if err := parsePostForm(c); err != nil {
		s.handleError(c, err)
		return
	}
	id := c.PostForm("id")
	if id == "" {
		s.handleError(c, models.ErrTopicNotFound)
		return
	}
	topic, err := s.readTopicForm(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	newID, err := s.Topics.UpdateTopic(c.Request.Context(), id, topic)
	if err != nil {
		log.Printf("[WEB]: Failed to update topic '%s': %v", id, err)
		s.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, topicURL(newID))
}

// deleteProcess removes the topic given by the id field and redirects home
func (s *WebServer) deleteProcess(c *gin.Context) {
	if err := parsePostForm(c); err != nil {
		s.handleError(c, err)
		return
	}
	id := c.PostForm("id")
	if id == "" {
		s.handleError(c, models.ErrTopicNotFound)
		return
	}
	if err := s.Topics.DeleteTopic(c.Request.Context(), id); err != nil {
		log.Printf("[WEB]: Failed to delete topic '%s': %v", id, err)
		s.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
