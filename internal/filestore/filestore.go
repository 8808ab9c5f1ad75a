// Package filestore keeps topics as flat <title>.txt files in a directory
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-while/go-topics/internal/models"
)

const topicExt = ".txt"

// FileStore stores one topic per file, the title is the file name and the description the content
type FileStore struct {
	dataDir string
	mux     sync.RWMutex // serializes rename+write against readers
}

// New opens a file store rooted at dataDir, creating the directory if needed
func New(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		return nil, errors.New("data directory must be set")
	}
	if err := createDirIfNotExists(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	log.Printf("[FILES]: Using data directory %s", dataDir)
	return &FileStore{dataDir: dataDir}, nil
}

// DataDir returns the directory holding the topic files
func (s *FileStore) DataDir() string {
	return s.dataDir
}

// topicPath maps an id or title to its file, returns "" if the name is unusable
func (s *FileStore) topicPath(name string) (string, string) {
	filtered := models.FilterTitle(name)
	if filtered == "" {
		return "", ""
	}
	return filtered, filepath.Join(s.dataDir, filtered+topicExt)
}

// titlePath maps a title that is written to disk. Titles that would be
// stored under another name are rejected.
func (s *FileStore) titlePath(title string) (string, error) {
	filtered, path := s.topicPath(title)
	if path == "" || filtered != title {
		return "", fmt.Errorf("%w: title %q is not usable as a file name", models.ErrInvalidInput, title)
	}
	return path, nil
}

// ListTopics returns all topics sorted by title, without descriptions
func (s *FileStore) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mux.RLock()
	entries, err := os.ReadDir(s.dataDir)
	s.mux.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	topics := make([]*models.Topic, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), topicExt) {
			continue
		}
		title := strings.TrimSuffix(entry.Name(), topicExt)
		if title == "" || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		// names GetTopic would map to another file
		if models.FilterTitle(title) != title {
			continue
		}
		topics = append(topics, &models.Topic{ID: title, Title: title})
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Title < topics[j].Title
	})
	return topics, nil
}

// GetTopic reads a single topic
func (s *FileStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title, path := s.topicPath(id)
	if path == "" {
		return nil, models.ErrTopicNotFound
	}

	s.mux.RLock()
	defer s.mux.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, notFound(err)
	}
	if info.IsDir() {
		return nil, models.ErrTopicNotFound
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(err)
	}
	return &models.Topic{
		ID:          title,
		Title:       title,
		Description: string(content),
		Created:     info.ModTime(),
	}, nil
}

// CreateTopic writes a new topic file and returns its id, the title
func (s *FileStore) CreateTopic(ctx context.Context, t *models.Topic) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title := t.Title
	path, err := s.titlePath(title)
	if err != nil {
		return "", err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	exists, err := fileExists(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat topic %s: %w", title, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", models.ErrTopicExists, title)
	}
	if err := writeFileAtomic(path, []byte(t.Description)); err != nil {
		return "", fmt.Errorf("failed to write topic %s: %w", title, err)
	}
	log.Printf("[FILES]: Created topic '%s'", title)
	return title, nil
}

// UpdateTopic renames the topic file to the new title and rewrites its content.
// Returns the new id.
func (s *FileStore) UpdateTopic(ctx context.Context, id string, t *models.Topic) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	oldTitle, oldPath := s.topicPath(id)
	if oldPath == "" {
		return "", models.ErrTopicNotFound
	}
	newTitle := t.Title
	newPath, err := s.titlePath(newTitle)
	if err != nil {
		return "", err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	exists, err := fileExists(oldPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat topic %s: %w", oldTitle, err)
	}
	if !exists {
		return "", models.ErrTopicNotFound
	}
	if newPath != oldPath {
		exists, err := fileExists(newPath)
		if err != nil {
			return "", fmt.Errorf("failed to stat topic %s: %w", newTitle, err)
		}
		if exists {
			return "", fmt.Errorf("%w: %s", models.ErrTopicExists, newTitle)
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return "", fmt.Errorf("failed to rename topic %s to %s: %w", oldTitle, newTitle, err)
		}
	}
	if err := writeFileAtomic(newPath, []byte(t.Description)); err != nil {
		return "", fmt.Errorf("failed to write topic %s: %w", newTitle, err)
	}
	log.Printf("[FILES]: Updated topic '%s' -> '%s'", oldTitle, newTitle)
	return newTitle, nil
}

// DeleteTopic removes the topic file
func (s *FileStore) DeleteTopic(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	title, path := s.topicPath(id)
	if path == "" {
		return models.ErrTopicNotFound
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := os.Remove(path); err != nil {
		return notFound(err)
	}
	log.Printf("[FILES]: Deleted topic '%s'", title)
	return nil
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return models.ErrTopicNotFound
	}
	return err
}
