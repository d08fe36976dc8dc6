package pgx

import (
	"context"
	"fmt"

	"github.com/verseprint/backend/pkg/style"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

func scanSections(rows pgxv5.Rows) ([]style.Section, error) {
	var out []style.Section
	for rows.Next() {
		var sec style.Section
		if err := rows.Scan(&sec.ID, &sec.AuthorID, &sec.DocumentID, &sec.Type, &sec.Position, &sec.Text); err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

// SearchSectionsLexical ranks the author's sections against the topic with
// term-frequency scoring over the simple text search configuration, which
// keeps Devanagari tokens intact.
func (s *StyleDBStorage) SearchSectionsLexical(ctx context.Context, authorID, topic string, limit int) ([]style.ScoredSection, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, document_id, section_type, position, text,
		       ts_rank_cd(to_tsvector('simple', text), plainto_tsquery('simple', $2)) AS rank
		FROM sections
		WHERE author_id = $1
		  AND to_tsvector('simple', text) @@ plainto_tsquery('simple', $2)
		ORDER BY rank DESC, id
		LIMIT $3`, authorID, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical section search for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.ScoredSection
	for rows.Next() {
		var sc style.ScoredSection
		sec := &sc.Section
		if err := rows.Scan(&sec.ID, &sec.AuthorID, &sec.DocumentID, &sec.Type, &sec.Position, &sec.Text, &sc.Score); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// SearchSectionsSemantic runs cosine KNN over the section embeddings,
// dropping candidates under the similarity floor.
func (s *StyleDBStorage) SearchSectionsSemantic(ctx context.Context, authorID string, vector []float32, limit int, floor float64) ([]style.ScoredSection, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(vector)
	rows, err := s.conn.Query(ctx, `
		SELECT s.id, s.author_id, s.document_id, s.section_type, s.position, s.text,
		       1 - (e.embedding <=> $2) AS similarity
		FROM embeddings e
		JOIN sections s ON s.id = e.owner_id
		WHERE e.author_id = $1
		  AND e.owner_type = 'section'
		  AND 1 - (e.embedding <=> $2) >= $3
		ORDER BY e.embedding <=> $2
		LIMIT $4`, authorID, vec, floor, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic section search for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.ScoredSection
	for rows.Next() {
		var sc style.ScoredSection
		sec := &sc.Section
		if err := rows.Scan(&sec.ID, &sec.AuthorID, &sec.DocumentID, &sec.Type, &sec.Position, &sec.Text, &sc.Score); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// UpsertEmbeddings writes embedding records in one batch.
func (s *StyleDBStorage) UpsertEmbeddings(ctx context.Context, records []style.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgxv5.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO embeddings (owner_id, owner_type, author_id, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (owner_id, owner_type) DO UPDATE
			SET embedding = EXCLUDED.embedding`,
			r.OwnerID, r.OwnerType, r.AuthorID, pgvector.NewVector(r.Vector))
	}
	results := s.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert embedding: %w", err)
		}
	}
	return nil
}

func (s *StyleDBStorage) TopPhrases(ctx context.Context, authorID string, limit int, signatureOnly bool) ([]style.Phrase, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, text, frequency, lift, is_signature
		FROM phrases
		WHERE author_id = $1 AND (NOT $2 OR is_signature)
		ORDER BY frequency DESC, text
		LIMIT $3`, authorID, signatureOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("top phrases for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.Phrase
	for rows.Next() {
		var p style.Phrase
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Text, &p.Frequency, &p.Lift, &p.IsSignature); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *StyleDBStorage) TopRhymePairs(ctx context.Context, authorID string, limit int) ([]style.RhymePair, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, word_a, word_b, rhyme_type, frequency
		FROM rhyme_pairs
		WHERE author_id = $1
		ORDER BY frequency DESC, word_a, word_b
		LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("top rhyme pairs for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.RhymePair
	for rows.Next() {
		var r style.RhymePair
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.WordA, &r.WordB, &r.Type, &r.Frequency); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *StyleDBStorage) TopMotifs(ctx context.Context, authorID string, limit int) ([]style.Motif, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, source_text, source_domain, target_domain, frequency
		FROM motifs
		WHERE author_id = $1
		ORDER BY frequency DESC, source_text
		LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("top motifs for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.Motif
	for rows.Next() {
		var m style.Motif
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.SourceText, &m.SourceDomain, &m.TargetDomain, &m.Frequency); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *StyleDBStorage) TopCultural(ctx context.Context, authorID string, limit int) ([]style.CulturalReference, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, text, category, frequency
		FROM cultural_references
		WHERE author_id = $1
		ORDER BY frequency DESC, text
		LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("top cultural references for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.CulturalReference
	for rows.Next() {
		var c style.CulturalReference
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.Text, &c.Category, &c.Frequency); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *StyleDBStorage) TopStructures(ctx context.Context, authorID string, limit int) ([]style.StructureTemplate, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, author_id, pattern, avg_line_counts, frequency
		FROM structure_templates
		WHERE author_id = $1
		ORDER BY frequency DESC, id
		LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("top structures for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.StructureTemplate
	for rows.Next() {
		var st style.StructureTemplate
		var pattern []string
		if err := rows.Scan(&st.ID, &st.AuthorID, &pattern, &st.AvgLineCounts, &st.Frequency); err != nil {
			return nil, err
		}
		st.Pattern = make([]style.SectionType, len(pattern))
		for i, p := range pattern {
			st.Pattern[i] = style.SectionType(p)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *StyleDBStorage) TopArcShapes(ctx context.Context, authorID string, limit int) ([]style.ArcShape, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT shape
		FROM emotional_arcs
		WHERE author_id = $1
		GROUP BY shape
		ORDER BY COUNT(*) DESC, shape
		LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("top arc shapes for %s: %w", authorID, err)
	}
	defer rows.Close()

	var out []style.ArcShape
	for rows.Next() {
		var shape style.ArcShape
		if err := rows.Scan(&shape); err != nil {
			return nil, err
		}
		out = append(out, shape)
	}
	return out, rows.Err()
}
