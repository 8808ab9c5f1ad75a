package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-while/go-topics/internal/models"
)

// ListAuthors returns all authors ordered by id
func (db *Database) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	rows, err := retryableQuery(ctx, db.mainDB, "SELECT id, name, profile FROM author ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	var authors []*models.Author
	for rows.Next() {
		author := &models.Author{}
		if err := rows.Scan(&author.ID, &author.Name, &author.Profile); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, author)
	}
	return authors, rows.Err()
}

// GetAuthor returns a single author
func (db *Database) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	author := &models.Author{}
	err := retryableQueryRowScan(ctx, db.mainDB, db.rebind("SELECT id, name, profile FROM author WHERE id = ?"),
		[]interface{}{id}, &author.ID, &author.Name, &author.Profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author %d: %w", id, err)
	}
	return author, nil
}

// CreateAuthor inserts an author and returns its new id
func (db *Database) CreateAuthor(ctx context.Context, a *models.Author) (int64, error) {
	query := "INSERT INTO author (name, profile) VALUES (?, ?)"
	if db.Driver() == DriverPostgres {
		if err := retryableQueryRowScan(ctx, db.mainDB, db.rebind(query+" RETURNING id"),
			[]interface{}{a.Name, a.Profile}, &a.ID); err != nil {
			return 0, fmt.Errorf("failed to create author: %w", err)
		}
		return a.ID, nil
	}
	res, err := retryableExec(ctx, db.mainDB, query, a.Name, a.Profile)
	if err != nil {
		return 0, fmt.Errorf("failed to create author: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return 0, fmt.Errorf("failed to get new author id: %w", err)
	}
	return a.ID, nil
}

// UpdateAuthor updates name and profile of an author
func (db *Database) UpdateAuthor(ctx context.Context, a *models.Author) error {
	res, err := retryableExec(ctx, db.mainDB, db.rebind("UPDATE author SET name = ?, profile = ? WHERE id = ?"),
		a.Name, a.Profile, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update author %d: %w", a.ID, err)
	}
	return expectAffected(res, models.ErrAuthorNotFound)
}

// DeleteAuthor removes an author that no topic references anymore
func (db *Database) DeleteAuthor(ctx context.Context, id int64) error {
	res, err := retryableExec(ctx, db.mainDB, db.rebind("DELETE FROM author WHERE id = ?"), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", models.ErrAuthorInUse, err)
		}
		return fmt.Errorf("failed to delete author %d: %w", id, err)
	}
	return expectAffected(res, models.ErrAuthorNotFound)
}
