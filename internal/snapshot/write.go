package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ironsheep/image-patterns-mcp/internal/links"
	"github.com/ironsheep/image-patterns-mcp/internal/recognizer"
)

// Save writes a recognition run: its links with usage and frequency, the
// pair frequency table, the row and column roots and the compressed level
// matrix. The whole run is written in one transaction; saving the same run
// twice is a no-op.
func (s *Store) Save(ctx context.Context, imagePath string, res *recognizer.Result) error {
	candidates, err := res.Ranker().Candidates()
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	runID := res.RunID.String()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, image_path, width, height, link_count, max_level, levels, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		runID,
		imagePath,
		res.Width,
		res.Height,
		len(candidates),
		int64(res.Levels.Max()),
		encodeLevels(res.Levels),
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links
		(run_id, id, source_kind, source_value, target_kind, target_value, usages, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save links: prepare: %w", err)
	}
	defer linkStmt.Close()

	for _, c := range candidates {
		_, err := linkStmt.ExecContext(ctx,
			runID,
			int64(c.Link),
			int(c.Relation.Source.Kind()),
			int64(c.Relation.Source.Raw()),
			int(c.Relation.Target.Kind()),
			int64(c.Relation.Target.Raw()),
			int64(c.Usages),
			int64(c.Frequency),
		)
		if err != nil {
			return fmt.Errorf("save link %v: %w", c.Link, err)
		}
	}

	pairStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pairs
		(run_id, source_kind, source_value, target_kind, target_value, count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save pairs: prepare: %w", err)
	}
	defer pairStmt.Close()

	for _, p := range res.Session.Cache().Pairs() {
		_, err := pairStmt.ExecContext(ctx,
			runID,
			int(p.Source.Kind()),
			int64(p.Source.Raw()),
			int(p.Target.Kind()),
			int64(p.Target.Raw()),
			int64(p.Count),
		)
		if err != nil {
			return fmt.Errorf("save pair %v->%v: %w", p.Source, p.Target, err)
		}
	}

	if err := saveRoots(ctx, tx, runID, axisRow, res.Rows); err != nil {
		return err
	}
	if err := saveRoots(ctx, tx, runID, axisColumn, res.Columns); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	return nil
}

const (
	axisRow    = "row"
	axisColumn = "column"
)

func saveRoots(ctx context.Context, tx *sql.Tx, runID, axis string, roots []links.Element) error {
	for i, root := range roots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO roots (run_id, axis, position, kind, value)
			VALUES (?, ?, ?, ?, ?)
		`, runID, axis, i, int(root.Kind()), int64(root.Raw()))
		if err != nil {
			return fmt.Errorf("save %s root %d: %w", axis, i, err)
		}
	}
	return nil
}
