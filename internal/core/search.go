package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SearchResult represents a single search result across resource types.
type SearchResult struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	ReportID string `json:"report_id,omitempty"`
	Status   string `json:"status"`
}

// SearchService provides cross-resource search for the staff console.
type SearchService struct {
	db DB
}

// NewSearchService creates a new SearchService.
func NewSearchService(db DB) *SearchService {
	return &SearchService{db: db}
}

// Search runs parallel queries across resource tables and returns matching results.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + query + "%"

	type queryDef struct {
		sql  string
		args []any
	}

	queries := []queryDef{
		{
			sql: `SELECT 'report', id, tracking_code, '', status FROM reports
				WHERE tracking_code ILIKE $1 OR address ILIKE $1 OR reporter_name ILIKE $1
				LIMIT $2`,
			args: []any{pattern, limit},
		},
		{
			sql: `SELECT 'assignment', a.id, COALESCE(r.tracking_code, a.notes), COALESCE(a.report_id::text, ''), a.status
				FROM assignments a LEFT JOIN reports r ON a.report_id = r.id
				WHERE a.notes ILIKE $1 OR r.tracking_code ILIKE $1
				LIMIT $2`,
			args: []any{pattern, limit},
		},
		{
			sql: `SELECT 'event', id, title, '', status FROM events
				WHERE title ILIKE $1 OR description ILIKE $1
				LIMIT $2`,
			args: []any{pattern, limit},
		},
		{
			sql: `SELECT 'form_template', id, name, '', CASE WHEN is_active THEN 'active' ELSE 'inactive' END
				FROM form_templates
				WHERE name ILIKE $1
				LIMIT $2`,
			args: []any{pattern, limit},
		},
	}

	results := make([][]SearchResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		g.Go(func() error {
			rows, err := s.db.Query(ctx, q.sql, q.args...)
			if err != nil {
				return fmt.Errorf("search query %d: %w", i, err)
			}
			defer rows.Close()

			for rows.Next() {
				var r SearchResult
				if err := rows.Scan(&r.Type, &r.ID, &r.Label, &r.ReportID, &r.Status); err != nil {
					return fmt.Errorf("scan search result: %w", err)
				}
				results[i] = append(results[i], r)
			}
			return rows.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var all []SearchResult
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all, nil
}
