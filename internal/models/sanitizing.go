package models

import (
	"fmt"
	"html"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Security and sanitization methods

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// SanitizeTitle strips all markup from a title and returns NFC normalized plain text.
// Entities produced by the sanitizer are decoded again, html/template escapes on output.
func SanitizeTitle(title string) string {
	clean := html.UnescapeString(strictPolicy.Sanitize(title))
	return strings.TrimSpace(norm.NFC.String(clean))
}

// SanitizeDescription keeps safe formatting markup and drops scripts, event handlers and the like
func SanitizeDescription(description string) string {
	return ugcPolicy.Sanitize(norm.NFC.String(description))
}

// FilterTitle sanitizes a title and reduces it to a base name usable as a file name.
// Returns an empty string if nothing usable is left.
func FilterTitle(title string) string {
	clean := SanitizeTitle(title)
	if clean == "" {
		return ""
	}
	clean = strings.ReplaceAll(clean, "\\", "/")
	base := strings.TrimSpace(path.Base(clean))
	switch base {
	case ".", "..", "/", "":
		return ""
	}
	return base
}

// ValidateTopic sanitizes the user supplied fields of a topic in place
func ValidateTopic(t *Topic) error {
	if t == nil {
		return fmt.Errorf("%w: empty topic", ErrInvalidInput)
	}
	t.Title = SanitizeTitle(t.Title)
	t.Description = SanitizeDescription(t.Description)
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, MaxTitleLength)
	}
	return nil
}

// ValidateAuthor sanitizes the fields of an author in place
func ValidateAuthor(a *Author) error {
	if a == nil {
		return fmt.Errorf("%w: empty author", ErrInvalidInput)
	}
	a.Name = SanitizeTitle(a.Name)
	a.Profile = SanitizeTitle(a.Profile)
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(a.Name) > MaxNameLength {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidInput, MaxNameLength)
	}
	if utf8.RuneCountInString(a.Profile) > MaxProfileLength {
		return fmt.Errorf("%w: profile is longer than %d characters", ErrInvalidInput, MaxProfileLength)
	}
	return nil
}

// PrintTimeSinceHumanReadable returns a human-readable time difference from now
func PrintTimeSinceHumanReadable(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	if diff < 0 {
		return "just now"
	}

	totalDays := int(diff.Hours() / 24)

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case totalDays < 30:
		return fmt.Sprintf("%d days ago", totalDays)
	case totalDays < 365:
		months := totalDays / 30
		if months == 1 {
			return "1 Month ago"
		}
		return fmt.Sprintf("%d Months ago", months)
	default:
		years := totalDays / 365
		if years == 1 {
			return "1 Year ago"
		}
		return fmt.Sprintf("%d Years ago", years)
	}
}
