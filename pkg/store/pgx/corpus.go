package pgx

import (
	"context"
	"fmt"

	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"
)

// SaveDocumentTree writes one document with all its sections and lines in a
// single transaction, so the containment tree is never partially visible.
func (s *StyleDBStorage) SaveDocumentTree(ctx context.Context, tree store.DocumentTree) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin document tree tx: %w", err)
	}
	defer tx.Rollback(ctx)

	doc := tree.Document
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (id, author_id, collection_id, title, language, raw_text)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`,
		doc.ID, doc.AuthorID, doc.CollectionID, doc.Title, doc.Language,
		util.SanitizePostgresText(doc.RawText))
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}

	for _, sec := range tree.Sections {
		_, err = tx.Exec(ctx, `
			INSERT INTO sections (id, author_id, document_id, section_type, position, text)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sec.ID, sec.AuthorID, sec.DocumentID, sec.Type, sec.Position,
			util.SanitizePostgresText(sec.Text))
		if err != nil {
			return fmt.Errorf("insert section %s: %w", sec.ID, err)
		}
	}

	for _, line := range tree.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO lines (id, author_id, section_id, position, text, end_word, syllable_count, code_switched)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			line.ID, line.AuthorID, line.SectionID, line.Position,
			util.SanitizePostgresText(line.Text), line.EndWord,
			line.SyllableCount, line.CodeSwitched)
		if err != nil {
			return fmt.Errorf("insert line %s: %w", line.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *StyleDBStorage) DeleteAuthorDocuments(ctx context.Context, authorID string) error {
	_, err := s.conn.Exec(ctx, `DELETE FROM documents WHERE author_id = $1`, authorID)
	if err != nil {
		return fmt.Errorf("delete documents for %s: %w", authorID, err)
	}
	return nil
}

func (s *StyleDBStorage) GetAuthorLines(ctx context.Context, authorID string) ([]style.Line, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT l.id, l.author_id, l.section_id, l.position, l.text, l.end_word, l.syllable_count, l.code_switched
		FROM lines l
		JOIN sections s ON s.id = l.section_id
		WHERE l.author_id = $1
		ORDER BY s.document_id, s.position, l.position`, authorID)
	if err != nil {
		return nil, fmt.Errorf("query lines for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.Line
	for rows.Next() {
		var l style.Line
		if err := rows.Scan(&l.ID, &l.AuthorID, &l.SectionID, &l.Position, &l.Text, &l.EndWord, &l.SyllableCount, &l.CodeSwitched); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *StyleDBStorage) GetAuthorSections(ctx context.Context, authorID string) ([]style.Section, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, document_id, section_type, position, text
		FROM sections
		WHERE author_id = $1
		ORDER BY document_id, position`, authorID)
	if err != nil {
		return nil, fmt.Errorf("query sections for %s: %w", authorID, err)
	}
	defer rows.Close()
	return scanSections(rows)
}

func (s *StyleDBStorage) GetSectionsByDocument(ctx context.Context, documentID string) ([]style.Section, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, document_id, section_type, position, text
		FROM sections
		WHERE document_id = $1
		ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query sections for document %s: %w", documentID, err)
	}
	defer rows.Close()
	return scanSections(rows)
}

func (s *StyleDBStorage) GetAuthorDocuments(ctx context.Context, authorID string) ([]style.Document, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, COALESCE(collection_id, ''), title, language
		FROM documents
		WHERE author_id = $1
		ORDER BY id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("query documents for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.Document
	for rows.Next() {
		var d style.Document
		if err := rows.Scan(&d.ID, &d.AuthorID, &d.CollectionID, &d.Title, &d.Language); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
