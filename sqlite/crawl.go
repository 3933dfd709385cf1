package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/sitegraph"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitegraph.Exporter = (*CrawlService)(nil)

// CrawlService persists crawl reports. Each exported report becomes one row
// in crawls plus one row per edge.
type CrawlService struct {
	db *DB
}

// NewCrawlService creates a new CrawlService.
func NewCrawlService(db *DB) *CrawlService {
	return &CrawlService{db: db}
}

// CrawlFilter selects stored crawls.
type CrawlFilter struct {
	Seed *string

	Limit  int
	Offset int
}

// Export stores r in a single transaction. A report without an ID is
// assigned a new UUID; exporting the same ID twice returns ECONFLICT.
func (s *CrawlService) Export(ctx context.Context, r *sitegraph.Report) error {
	if r.Seed == "" {
		return sitegraph.Errorf(sitegraph.EINVALID, "report seed required")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawls WHERE id = ?", r.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return sitegraph.Errorf(sitegraph.ECONFLICT, "crawl %s already stored", r.ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO crawls (id, seed, started_at, finished_at, fetched, skipped, failed, visited, canceled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Seed, formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Fetched, r.Skipped, r.Failed, r.Visited, r.Canceled)
	if err != nil {
		return fmt.Errorf("insert crawl: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO edges (crawl_id, edge_key, source, target)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range r.Edges {
		if _, err := stmt.ExecContext(ctx, r.ID, edgeKey(e.Source, e.Target), e.Source, e.Target); err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
	}

	return tx.Commit()
}

// FindCrawlByID retrieves a stored report including its sorted edges.
func (s *CrawlService) FindCrawlByID(ctx context.Context, id string) (*sitegraph.Report, error) {
	r, err := scanCrawl(s.db.QueryRowContext(ctx, `
		SELECT id, seed, started_at, finished_at, fetched, skipped, failed, visited, canceled
		FROM crawls
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sitegraph.Errorf(sitegraph.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target FROM edges
		WHERE crawl_id = ?
		ORDER BY source, target
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r.Edges = []sitegraph.Edge{}
	for rows.Next() {
		var e sitegraph.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, err
		}
		r.Edges = append(r.Edges, e)
	}
	return r, rows.Err()
}

// FindCrawls retrieves reports matching the filter, newest first. Edges are
// not loaded.
func (s *CrawlService) FindCrawls(ctx context.Context, filter CrawlFilter) ([]*sitegraph.Report, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, seed, started_at, finished_at, fetched, skipped, failed, visited, canceled FROM crawls WHERE 1=1")

	if filter.Seed != nil {
		query.WriteString(" AND seed = ?")
		args = append(args, *filter.Seed)
	}

	query.WriteString(" ORDER BY started_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*sitegraph.Report
	for rows.Next() {
		r, err := scanCrawl(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// DeleteCrawl permanently removes a crawl and its edges.
func (s *CrawlService) DeleteCrawl(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM crawls WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sitegraph.Errorf(sitegraph.ENOTFOUND, "crawl not found")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCrawl(row scanner) (*sitegraph.Report, error) {
	var r sitegraph.Report
	var startedAt, finishedAt string
	if err := row.Scan(&r.ID, &r.Seed, &startedAt, &finishedAt,
		&r.Fetched, &r.Skipped, &r.Failed, &r.Visited, &r.Canceled); err != nil {
		return nil, err
	}

	var err error
	if r.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if r.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	return &r, nil
}
