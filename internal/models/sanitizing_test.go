package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTitle(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Go", "Go"},
		{"  padded  ", "padded"},
		{"<b>Go</b> & more", "Go & more"},
		{"<script>alert(1)</script>Go", "Go"},
		{"Café", "Café"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, SanitizeTitle(tc.in), "input %q", tc.in)
	}
}

func TestFilterTitle(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"HTML", "HTML"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\windows\\win.ini", "win.ini"},
		{"dir/", "dir"},
		{"..", ""},
		{".", ""},
		{"/", ""},
		{"", ""},
		{"<i></i>", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FilterTitle(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeDescription(t *testing.T) {
	out := SanitizeDescription(`<p onclick="steal()">hi</p><script>x()</script>`)
	assert.Contains(t, out, "<p>hi</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
}

func TestValidateTopic(t *testing.T) {
	topic := &Topic{Title: " <em>Go</em> ", Description: "<b>fast</b>"}
	require.NoError(t, ValidateTopic(topic))
	assert.Equal(t, "Go", topic.Title)
	assert.Equal(t, "<b>fast</b>", topic.Description)

	err := ValidateTopic(&Topic{Title: "<br>"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = ValidateTopic(&Topic{Title: strings.Repeat("x", MaxTitleLength+1)})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Error(t, ValidateTopic(nil))
}

func TestValidateAuthor(t *testing.T) {
	author := &Author{Name: "egoing", Profile: "<u>developer</u>"}
	require.NoError(t, ValidateAuthor(author))
	assert.Equal(t, "developer", author.Profile)

	assert.ErrorIs(t, ValidateAuthor(&Author{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateAuthor(&Author{Name: strings.Repeat("n", MaxNameLength+1)}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateAuthor(&Author{Name: "n", Profile: strings.Repeat("p", MaxProfileLength+1)}), ErrInvalidInput)
}

func TestTopicDescriptionHelpers(t *testing.T) {
	topic := &Topic{Description: "a &amp; b <em>c</em>"}
	assert.Equal(t, "a & b <em>c</em>", topic.DescriptionSource())
	assert.Contains(t, string(topic.DescriptionHTML()), "<em>c</em>")

	var nilTopic *Topic
	assert.Empty(t, nilTopic.DescriptionHTML())
	assert.Empty(t, nilTopic.DescriptionSource())
}

func TestPrintTimeSinceHumanReadable(t *testing.T) {
	assert.Equal(t, "never", PrintTimeSinceHumanReadable(time.Time{}))
	assert.Equal(t, "3 hours ago", PrintTimeSinceHumanReadable(time.Now().Add(-3*time.Hour-time.Minute)))
	assert.Equal(t, "2 days ago", PrintTimeSinceHumanReadable(time.Now().Add(-49*time.Hour)))
	assert.Equal(t, "1 Year ago", PrintTimeSinceHumanReadable(time.Now().Add(-400*24*time.Hour)))
}
