package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-while/go-topics/internal/models"
)

const queryGetTopic = `SELECT topic.id, topic.title, topic.description, topic.created, topic.author_id, author.name, author.profile
	FROM topic LEFT JOIN author ON topic.author_id = author.id
	WHERE topic.id = ?`

// ListTopics returns id and title of all topics ordered by id
func (db *Database) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	rows, err := retryableQuery(ctx, db.mainDB, "SELECT id, title FROM topic ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []*models.Topic
	for rows.Next() {
		var id int64
		topic := &models.Topic{}
		if err := rows.Scan(&id, &topic.Title); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topic.ID = strconv.FormatInt(id, 10)
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// GetTopic returns a topic joined with its author
func (db *Database) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	topicID, ok := parseID(id)
	if !ok {
		return nil, models.ErrTopicNotFound
	}

	var (
		rowID       int64
		topic       = &models.Topic{}
		description sql.NullString
		authorID    sql.NullInt64
		name        sql.NullString
		profile     sql.NullString
	)
	err := retryableQueryRowScan(ctx, db.mainDB, db.rebind(queryGetTopic), []interface{}{topicID},
		&rowID, &topic.Title, &description, &topic.Created, &authorID, &name, &profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic %d: %w", topicID, err)
	}

	topic.ID = strconv.FormatInt(rowID, 10)
	topic.Description = description.String
	topic.AuthorID = authorID.Int64
	topic.AuthorName = name.String
	topic.AuthorProfile = profile.String
	return topic, nil
}

// CreateTopic inserts a topic and returns its new id
func (db *Database) CreateTopic(ctx context.Context, t *models.Topic) (string, error) {
	created := time.Now().UTC()
	args := []interface{}{t.Title, t.Description, created, nullAuthorID(t.AuthorID)}
	query := "INSERT INTO topic (title, description, created, author_id) VALUES (?, ?, ?, ?)"

	var id int64
	if db.Driver() == DriverPostgres {
		err := retryableQueryRowScan(ctx, db.mainDB, db.rebind(query+" RETURNING id"), args, &id)
		if err != nil {
			return "", mapTopicWriteError(err)
		}
	} else {
		res, err := retryableExec(ctx, db.mainDB, query, args...)
		if err != nil {
			return "", mapTopicWriteError(err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return "", fmt.Errorf("failed to get new topic id: %w", err)
		}
	}
	t.ID = strconv.FormatInt(id, 10)
	t.Created = created
	return t.ID, nil
}

// UpdateTopic updates title, description and author of a topic, the id does not change
func (db *Database) UpdateTopic(ctx context.Context, id string, t *models.Topic) (string, error) {
	topicID, ok := parseID(id)
	if !ok {
		return "", models.ErrTopicNotFound
	}
	res, err := retryableExec(ctx, db.mainDB,
		db.rebind("UPDATE topic SET title = ?, description = ?, author_id = ? WHERE id = ?"),
		t.Title, t.Description, nullAuthorID(t.AuthorID), topicID)
	if err != nil {
		return "", mapTopicWriteError(err)
	}
	if err := expectAffected(res, models.ErrTopicNotFound); err != nil {
		return "", err
	}
	return strconv.FormatInt(topicID, 10), nil
}

// DeleteTopic removes a topic
func (db *Database) DeleteTopic(ctx context.Context, id string) error {
	topicID, ok := parseID(id)
	if !ok {
		return models.ErrTopicNotFound
	}
	res, err := retryableExec(ctx, db.mainDB, db.rebind("DELETE FROM topic WHERE id = ?"), topicID)
	if err != nil {
		return fmt.Errorf("failed to delete topic %d: %w", topicID, err)
	}
	return expectAffected(res, models.ErrTopicNotFound)
}

func nullAuthorID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func mapTopicWriteError(err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", models.ErrAuthorNotFound, err)
	}
	return fmt.Errorf("failed to write topic: %w", err)
}

// expectAffected returns notFound if the statement touched no rows
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
