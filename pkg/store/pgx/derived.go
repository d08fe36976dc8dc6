package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/style"

	pgxv5 "github.com/jackc/pgx/v5"
)

var derivedTables = []string{
	"phrases", "motifs", "cultural_references", "rhyme_pairs", "themes",
	"meter_patterns", "structure_templates", "thematic_clusters",
	"emotional_arcs",
}

// ReplaceDerived swaps the author's entire derived layer in one
// transaction. Readers observe either the previous ingestion run's facts or
// the new ones, never a mix.
func (s *StyleDBStorage) ReplaceDerived(ctx context.Context, authorID string, derived store.DerivedGraph) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin derived tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range derivedTables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE author_id = $1`, authorID); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, authorID, err)
		}
	}

	if err := insertDerived(ctx, tx, authorID, derived); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertDerived(ctx context.Context, tx pgxv5.Tx, authorID string, d store.DerivedGraph) error {
	for _, p := range d.Phrases {
		_, err := tx.Exec(ctx, `
			INSERT INTO phrases (id, author_id, text, frequency, lift, is_signature)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, authorID, p.Text, p.Frequency, p.Lift, p.IsSignature)
		if err != nil {
			return fmt.Errorf("insert phrase %q: %w", p.Text, err)
		}
	}
	for _, m := range d.Motifs {
		_, err := tx.Exec(ctx, `
			INSERT INTO motifs (id, author_id, source_text, source_domain, target_domain, frequency)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (author_id, source_text) DO UPDATE
			SET frequency = motifs.frequency + EXCLUDED.frequency`,
			m.ID, authorID, m.SourceText, m.SourceDomain, m.TargetDomain, m.Frequency)
		if err != nil {
			return fmt.Errorf("insert motif %q: %w", m.SourceText, err)
		}
	}
	for _, c := range d.Cultural {
		_, err := tx.Exec(ctx, `
			INSERT INTO cultural_references (id, author_id, text, category, frequency)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ID, authorID, c.Text, c.Category, c.Frequency)
		if err != nil {
			return fmt.Errorf("insert cultural reference %q: %w", c.Text, err)
		}
	}
	for _, r := range d.RhymePairs {
		_, err := tx.Exec(ctx, `
			INSERT INTO rhyme_pairs (id, author_id, word_a, word_b, rhyme_type, frequency)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (author_id, word_a, word_b) DO UPDATE
			SET frequency = rhyme_pairs.frequency + EXCLUDED.frequency`,
			r.ID, authorID, r.WordA, r.WordB, r.Type, r.Frequency)
		if err != nil {
			return fmt.Errorf("insert rhyme pair %s/%s: %w", r.WordA, r.WordB, err)
		}
	}
	for _, t := range d.Themes {
		_, err := tx.Exec(ctx, `
			INSERT INTO themes (id, author_id, name, strength, frequency)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, authorID, t.Name, t.Strength, t.Frequency)
		if err != nil {
			return fmt.Errorf("insert theme %q: %w", t.Name, err)
		}
	}
	for _, m := range d.Meters {
		_, err := tx.Exec(ctx, `
			INSERT INTO meter_patterns (id, author_id, syllables, frequency)
			VALUES ($1, $2, $3, $4)`,
			m.ID, authorID, m.Syllables, m.Frequency)
		if err != nil {
			return fmt.Errorf("insert meter pattern %s: %w", m.ID, err)
		}
	}
	for _, st := range d.Structures {
		pattern := make([]string, len(st.Pattern))
		for i, p := range st.Pattern {
			pattern[i] = string(p)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO structure_templates (id, author_id, pattern, avg_line_counts, frequency)
			VALUES ($1, $2, $3, $4, $5)`,
			st.ID, authorID, pattern, st.AvgLineCounts, st.Frequency)
		if err != nil {
			return fmt.Errorf("insert structure template %s: %w", st.ID, err)
		}
	}
	for _, c := range d.Clusters {
		_, err := tx.Exec(ctx, `
			INSERT INTO thematic_clusters (id, author_id, label, keywords, document_ids, cohesion)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, authorID, c.Label, c.Keywords, c.DocumentIDs, c.Cohesion)
		if err != nil {
			return fmt.Errorf("insert cluster %s: %w", c.ID, err)
		}
	}
	for _, a := range d.Arcs {
		points, err := json.Marshal(a.Points)
		if err != nil {
			return fmt.Errorf("marshal arc points for %s: %w", a.DocumentID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO emotional_arcs (id, author_id, document_id, shape, points)
			VALUES ($1, $2, $3, $4, $5)`,
			a.ID, authorID, a.DocumentID, a.Shape, points)
		if err != nil {
			return fmt.Errorf("insert arc for %s: %w", a.DocumentID, err)
		}
	}
	return nil
}

// HasDerived reports whether the author has any derived analytics at all;
// retrieval uses it to pick graph-backed vs flat-fallback mode.
func (s *StyleDBStorage) HasDerived(ctx context.Context, authorID string) (bool, error) {
	var n int
	err := s.conn.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM phrases WHERE author_id = $1)
		     + (SELECT COUNT(*) FROM rhyme_pairs WHERE author_id = $1)
		     + (SELECT COUNT(*) FROM structure_templates WHERE author_id = $1)`,
		authorID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count derived for %s: %w", authorID, err)
	}
	return n > 0, nil
}

func (s *StyleDBStorage) SaveFingerprint(ctx context.Context, fp style.StyleFingerprint) error {
	profile, err := json.Marshal(fp)
	if err != nil {
		return fmt.Errorf("marshal fingerprint: %w", err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO fingerprints (author_id, graph_version, profile, built_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (author_id) DO UPDATE
		SET graph_version = EXCLUDED.graph_version,
		    profile = EXCLUDED.profile,
		    built_at = EXCLUDED.built_at`,
		fp.AuthorID, fp.GraphVersion, profile, fp.BuiltAt)
	if err != nil {
		return fmt.Errorf("save fingerprint for %s: %w", fp.AuthorID, err)
	}
	return nil
}

func (s *StyleDBStorage) GetFingerprint(ctx context.Context, authorID string) (style.StyleFingerprint, error) {
	var profile []byte
	err := s.conn.QueryRow(ctx, `
		SELECT profile FROM fingerprints WHERE author_id = $1`, authorID).Scan(&profile)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return style.StyleFingerprint{}, style.ErrNoAuthorData
	}
	if err != nil {
		return style.StyleFingerprint{}, fmt.Errorf("get fingerprint for %s: %w", authorID, err)
	}
	var fp style.StyleFingerprint
	if err := json.Unmarshal(profile, &fp); err != nil {
		return style.StyleFingerprint{}, fmt.Errorf("unmarshal fingerprint for %s: %w", authorID, err)
	}
	return fp, nil
}
