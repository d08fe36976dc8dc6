package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/verseprint/backend/pkg/style"

	pgxv5 "github.com/jackc/pgx/v5"
)

func (s *StyleDBStorage) UpsertAuthor(ctx context.Context, author style.Author) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO authors (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		author.ID, author.Name)
	if err != nil {
		return fmt.Errorf("upsert author %s: %w", author.ID, err)
	}
	return nil
}

func (s *StyleDBStorage) GetAuthor(ctx context.Context, authorID string) (style.Author, error) {
	var a style.Author
	err := s.conn.QueryRow(ctx, `
		SELECT id, name, graph_version, created_at
		FROM authors WHERE id = $1`, authorID).
		Scan(&a.ID, &a.Name, &a.GraphVersion, &a.CreatedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return style.Author{}, style.ErrAuthorNotFound
	}
	if err != nil {
		return style.Author{}, fmt.Errorf("get author %s: %w", authorID, err)
	}
	return a, nil
}

// DeleteAuthor drops the whole graph partition; every table cascades off
// authors.
func (s *StyleDBStorage) DeleteAuthor(ctx context.Context, authorID string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM authors WHERE id = $1`, authorID)
	if err != nil {
		return fmt.Errorf("delete author %s: %w", authorID, err)
	}
	if tag.RowsAffected() == 0 {
		return style.ErrAuthorNotFound
	}
	return nil
}

func (s *StyleDBStorage) BumpGraphVersion(ctx context.Context, authorID string) (int64, error) {
	var version int64
	err := s.conn.QueryRow(ctx, `
		UPDATE authors SET graph_version = graph_version + 1
		WHERE id = $1
		RETURNING graph_version`, authorID).Scan(&version)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return 0, style.ErrAuthorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("bump graph version for %s: %w", authorID, err)
	}
	return version, nil
}
