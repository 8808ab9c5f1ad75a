package web

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// homePage shows the welcome page, or the topic given by ?id=
func (s *WebServer) homePage(c *gin.Context) {
	id := c.Query("id")

	if id == "" {
		base, err := s.getBaseTemplateData(c, "Welcome")
		if err != nil {
			s.handleError(c, err)
			return
		}
		s.renderTemplate(c, http.StatusOK, "index.html", TopicPageData{
			TemplateData: base,
			Heading:      "Welcome",
			Body:         template.HTML("Hello, Go"),
		})
		return
	}

	topic, err := s.Topics.GetTopic(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	base, err := s.getBaseTemplateData(c, topic.Title)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "index.html", TopicPageData{
		TemplateData: base,
		Topic:        topic,
		Heading:      topic.Title,
		Body:         topic.DescriptionHTML(),
	})
}
