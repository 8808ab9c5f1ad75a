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

// authorsPage lists all authors with a create form below
func (s *WebServer) authorsPage(c *gin.Context) {
	s.renderAuthors(c, nil)
}

// authorUpdatePage lists all authors with the update form for ?id=
func (s *WebServer) authorUpdatePage(c *gin.Context) {
	id, err := parseAuthorID(c.Query("id"))
	if err != nil {
		s.handleError(c, models.ErrAuthorNotFound)
		return
	}
	author, err := s.Authors.GetAuthor(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.renderAuthors(c, author)
}

func (s *WebServer) renderAuthors(c *gin.Context, edit *models.Author) {
	base, err := s.getBaseTemplateData(c, "Author")
	if err != nil {
		s.handleError(c, err)
		return
	}
	authors, err := s.Authors.ListAuthors(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	data := AuthorsPageData{
		TemplateData: base,
		Authors:      authors,
		Action:       "/author/create-process",
		Edit:         edit,
	}
	if edit != nil {
		data.Action = "/author/update-process"
	}
	s.renderTemplate(c, http.StatusOK, "authors.html", data)
}

// authorCreateProcess stores a new author
func (s *WebServer) authorCreateProcess(c *gin.Context) {
	if err := parsePostForm(c); err != nil {
		s.handleError(c, err)
		return
	}
	author := &models.Author{
		Name:    c.PostForm("name"),
		Profile: c.PostForm("profile"),
	}
	if err := models.ValidateAuthor(author); err != nil {
		s.handleError(c, err)
		return
	}
	if _, err := s.Authors.CreateAuthor(c.Request.Context(), author); err != nil {
		log.Printf("[WEB]: Failed to create author '%s': %v", author.Name, err)
		s.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/author")
}

// authorUpdateProcess updates name and profile of an author
func (s *WebServer) authorUpdateProcess(c *gin.Context) {
	if err := parsePostForm(c); err != nil {
		s.handleError(c, err)
		return
	}
	id, err := parseAuthorID(c.PostForm("id"))
	if err != nil {
		s.handleError(c, models.ErrAuthorNotFound)
		return
	}
	author := &models.Author{
		ID:      id,
		Name:    c.PostForm("name"),
		Profile: c.PostForm("profile"),
	}
	if err := models.ValidateAuthor(author); err != nil {
		s.handleError(c, err)
		return
	}
	if err := s.Authors.UpdateAuthor(c.Request.Context(), author); err != nil {
		log.Printf("[WEB]: Failed to update author %d: %v", id, err)
		s.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/author")
}

// authorDeleteProcess removes an author no topic references
func (s *WebServer) authorDeleteProcess(c *gin.Context) {
	if err := parsePostForm(c); err != nil {
		s.handleError(c, err)
		return
	}
	id, err := parseAuthorID(c.PostForm("id"))
	if err != nil {
		s.handleError(c, models.ErrAuthorNotFound)
		return
	}
	if err := s.Authors.DeleteAuthor(c.Request.Context(), id); err != nil {
		log.Printf("[WEB]: Failed to delete author %d: %v", id, err)
		s.handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/author")
}

func parseAuthorID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad author id %q", raw)
	}
	return id, nil
}
