package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-while/go-topics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return store
}

func TestCreateGetList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateTopic(ctx, &models.Topic{Title: "JavaScript", Description: "JavaScript is ..."})
	require.NoError(t, err)
	assert.Equal(t, "JavaScript", id)

	_, err = store.CreateTopic(ctx, &models.Topic{Title: "CSS", Description: "CSS is ..."})
	require.NoError(t, err)

	topic, err := store.GetTopic(ctx, "JavaScript")
	require.NoError(t, err)
	assert.Equal(t, "JavaScript is ...", topic.Description)
	assert.False(t, topic.Created.IsZero())

	topics, err := store.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "CSS", topics[0].Title)
	assert.Equal(t, "JavaScript", topics[1].Title)
}

func TestListIgnoresOtherFiles(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.DataDir(), "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(store.DataDir(), "sub.txt"), 0755))

	topics, err := store.ListTopics(ctx)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestCreateExisting(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateTopic(ctx, &models.Topic{Title: "HTML"})
	require.NoError(t, err)

	_, err = store.CreateTopic(ctx, &models.Topic{Title: "HTML", Description: "again"})
	assert.ErrorIs(t, err, models.ErrTopicExists)
}

func TestCreateRejectsUnusableTitle(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateTopic(context.Background(), &models.Topic{Title: ".."})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPathTraversalStaysInDataDir(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateTopic(ctx, &models.Topic{Title: "../escape", Description: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = os.Stat(filepath.Join(filepath.Dir(store.DataDir()), "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.CreateTopic(ctx, &models.Topic{Title: "escape", Description: "x"})
	require.NoError(t, err)

	// lookups are reduced to the base name
	topic, err := store.GetTopic(ctx, "../../escape")
	require.NoError(t, err)
	assert.Equal(t, "escape", topic.ID)
}

func TestTitlesThatWouldBeRenamedAreRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, title := range []string{"a <b> c", "<x>", "dir/name", " padded"} {
		_, err := store.CreateTopic(ctx, &models.Topic{Title: title})
		assert.ErrorIs(t, err, models.ErrInvalidInput, "title %q", title)
	}

	_, err := store.CreateTopic(ctx, &models.Topic{Title: "plain"})
	require.NoError(t, err)
	_, err = store.UpdateTopic(ctx, "plain", &models.Topic{Title: "a <b> c"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	topics, err := store.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "plain", topics[0].Title)
}

func TestListSkipsNamesGetCannotResolve(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, name := range []string{" spaced.txt", "<i>x.txt", "Cafe\u0301.txt", "ok.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(store.DataDir(), name), []byte("x"), 0644))
	}

	topics, err := store.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "ok", topics[0].ID)

	for _, topic := range topics {
		_, err := store.GetTopic(ctx, topic.ID)
		assert.NoError(t, err)
	}
}

func TestStatErrorsAreNotConflicts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateTopic(ctx, &models.Topic{Title: "kept"})
	require.NoError(t, err)

	// a regular file in place of the data directory makes stat fail with ENOTDIR
	require.NoError(t, os.RemoveAll(store.DataDir()))
	require.NoError(t, os.WriteFile(store.DataDir(), []byte("x"), 0644))

	_, err = store.CreateTopic(ctx, &models.Topic{Title: "new"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTopicExists)

	_, err = store.UpdateTopic(ctx, "kept", &models.Topic{Title: "renamed"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTopicNotFound)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTopic(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrTopicNotFound)

	_, err = store.GetTopic(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrTopicNotFound)
}

func TestUpdateRenames(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateTopic(ctx, &models.Topic{Title: "HTML", Description: "old"})
	require.NoError(t, err)

	newID, err := store.UpdateTopic(ctx, "HTML", &models.Topic{Title: "HTML5", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "HTML5", newID)

	_, err = store.GetTopic(ctx, "HTML")
	assert.ErrorIs(t, err, models.ErrTopicNotFound)

	topic, err := store.GetTopic(ctx, "HTML5")
	require.NoError(t, err)
	assert.Equal(t, "new", topic.Description)
}

func TestUpdateSameTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateTopic(ctx, &models.Topic{Title: "CSS", Description: "old"})
	require.NoError(t, err)

	newID, err := store.UpdateTopic(ctx, "CSS", &models.Topic{Title: "CSS", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "CSS", newID)

	topic, err := store.GetTopic(ctx, "CSS")
	require.NoError(t, err)
	assert.Equal(t, "new", topic.Description)
}

func TestUpdateConflictsAndMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateTopic(ctx, &models.Topic{Title: "A", Description: "a"})
	require.NoError(t, err)
	_, err = store.CreateTopic(ctx, &models.Topic{Title: "B", Description: "b"})
	require.NoError(t, err)

	_, err = store.UpdateTopic(ctx, "A", &models.Topic{Title: "B"})
	assert.ErrorIs(t, err, models.ErrTopicExists)

	topic, err := store.GetTopic(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "b", topic.Description)

	_, err = store.UpdateTopic(ctx, "C", &models.Topic{Title: "D"})
	assert.ErrorIs(t, err, models.ErrTopicNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateTopic(ctx, &models.Topic{Title: "Go"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTopic(ctx, "Go"))
	assert.ErrorIs(t, store.DeleteTopic(ctx, "Go"), models.ErrTopicNotFound)
}

func TestCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListTopics(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
