// Package models defines core data structures for go-topics
package models

import (
	"errors"
	"html"
	"html/template"
	"time"
)

// Input limits, matching the column sizes of the topic and author tables
const (
	MaxTitleLength   = 100
	MaxNameLength    = 50
	MaxProfileLength = 200
)

var (
	ErrTopicNotFound  = errors.New("topic not found")
	ErrTopicExists    = errors.New("topic already exists")
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorInUse    = errors.New("author is still referenced by topics")
	ErrInvalidInput   = errors.New("invalid input")
)

// Topic is a titled text record.
// ID is the file name without ".txt" for the file store and the decimal row id for the sql store.
type Topic struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Created       time.Time `json:"created,omitempty"`
	AuthorID      int64     `json:"author_id,omitempty"`
	AuthorName    string    `json:"author_name,omitempty"`
	AuthorProfile string    `json:"author_profile,omitempty"`
}

// Author represents the person a topic is attributed to
type Author struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// DescriptionHTML returns the description as trusted HTML for templates.
// The stored text is sanitized again since sql rows may have been written by other clients.
func (t *Topic) DescriptionHTML() template.HTML {
	if t == nil {
		return ""
	}
	return template.HTML(SanitizeDescription(t.Description))
}

// DescriptionSource returns the description as editable text for form fields
func (t *Topic) DescriptionSource() string {
	if t == nil {
		return ""
	}
	return html.UnescapeString(t.Description)
}

// CreatedSince returns a human readable age of the topic
func (t *Topic) CreatedSince() string {
	if t == nil {
		return ""
	}
	return PrintTimeSinceHumanReadable(t.Created)
}
