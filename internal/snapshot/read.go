package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/image-patterns-mcp/internal/levels"
	"github.com/ironsheep/image-patterns-mcp/internal/links"
)

// ErrRunNotFound is returned when no run matches the requested id.
var ErrRunNotFound = errors.New("run not found")

// Summary describes one stored run.
type Summary struct {
	RunID     uuid.UUID `json:"run_id"`
	ImagePath string    `json:"image_path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Links     int       `json:"links"`
	MaxLevel  uint64    `json:"max_level"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is a stored run read back with its level matrix and roots.
type Snapshot struct {
	Summary
	Levels  *levels.Matrix  `json:"levels"`
	Rows    []links.Element `json:"rows"`
	Columns []links.Element `json:"columns"`
	Pairs   int             `json:"pairs"`
}

// LinkRecord is one stored link with its statistics.
type LinkRecord struct {
	Link      links.Link     `json:"link"`
	Relation  links.Relation `json:"relation"`
	Usages    uint64         `json:"usages"`
	Frequency uint64         `json:"frequency"`
}

// Runs returns every stored run, oldest first.
//
// Returns an empty slice (not nil) if the database holds no runs.
func (s *Store) Runs(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_path, width, height, link_count, max_level, created_at
		FROM runs
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Summary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Latest loads the most recent run.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	return s.Load(ctx, runID)
}

// Load reads one run back.
func (s *Store) Load(ctx context.Context, runID uuid.UUID) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, image_path, width, height, link_count, max_level, created_at, levels
		FROM runs
		WHERE id = ?
	`, runID.String())

	var (
		snap Snapshot
		blob []byte
	)
	sum, err := scanSummary(row, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	snap.Summary = sum

	if snap.Levels, err = decodeLevels(blob, sum.Width, sum.Height); err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if snap.Rows, err = s.readRoots(ctx, runID, axisRow, sum.Height); err != nil {
		return nil, err
	}
	if snap.Columns, err = s.readRoots(ctx, runID, axisColumn, sum.Width); err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pairs WHERE run_id = ?`, runID.String()).Scan(&snap.Pairs)
	if err != nil {
		return nil, fmt.Errorf("count pairs: %w", err)
	}
	return &snap, nil
}

// TopLinks returns up to n links of a run ordered by usage, then frequency,
// both descending, then by id.
func (s *Store) TopLinks(ctx context.Context, runID uuid.UUID, n int) ([]LinkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_kind, source_value, target_kind, target_value, usages, frequency
		FROM links
		WHERE run_id = ?
		ORDER BY usages DESC, frequency DESC, id ASC
		LIMIT ?
	`, runID.String(), n)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	records := []LinkRecord{}
	for rows.Next() {
		var (
			rec                LinkRecord
			id                 int64
			srcKind, tgtKind   int
			srcValue, tgtValue int64
			usages, frequency  int64
		)
		if err := rows.Scan(&id, &srcKind, &srcValue, &tgtKind, &tgtValue, &usages, &frequency); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if rec.Relation.Source, err = links.FromRaw(links.Kind(srcKind), uint64(srcValue)); err != nil {
			return nil, fmt.Errorf("link %d source: %w", id, err)
		}
		if rec.Relation.Target, err = links.FromRaw(links.Kind(tgtKind), uint64(tgtValue)); err != nil {
			return nil, fmt.Errorf("link %d target: %w", id, err)
		}
		rec.Link = links.Link(id)
		rec.Usages = uint64(usages)
		rec.Frequency = uint64(frequency)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return records, nil
}

func (s *Store) readRoots(ctx context.Context, runID uuid.UUID, axis string, n int) ([]links.Element, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, kind, value
		FROM roots
		WHERE run_id = ? AND axis = ?
		ORDER BY position ASC
	`, runID.String(), axis)
	if err != nil {
		return nil, fmt.Errorf("query %s roots: %w", axis, err)
	}
	defer rows.Close()

	roots := make([]links.Element, 0, n)
	for rows.Next() {
		var (
			position, kind int
			value          int64
		)
		if err := rows.Scan(&position, &kind, &value); err != nil {
			return nil, fmt.Errorf("scan %s root: %w", axis, err)
		}
		if position != len(roots) {
			return nil, fmt.Errorf("%s roots: missing position %d", axis, len(roots))
		}
		e, err := links.FromRaw(links.Kind(kind), uint64(value))
		if err != nil {
			return nil, fmt.Errorf("%s root %d: %w", axis, position, err)
		}
		roots = append(roots, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s roots: %w", axis, err)
	}
	if len(roots) != n {
		return nil, fmt.Errorf("%s roots: got %d, want %d", axis, len(roots), n)
	}
	return roots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSummary reads the leading summary columns of a runs row; extra
// receives any trailing columns.
func scanSummary(row scanner, extra ...any) (Summary, error) {
	var (
		sum      Summary
		id       string
		maxLevel int64
		created  string
	)
	dest := append([]any{&id, &sum.ImagePath, &sum.Width, &sum.Height, &sum.Links, &maxLevel, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sum, err
		}
		return sum, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if sum.RunID, err = uuid.Parse(id); err != nil {
		return sum, fmt.Errorf("parse run id %q: %w", id, err)
	}
	if sum.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return sum, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	sum.MaxLevel = uint64(maxLevel)
	return sum, nil
}
