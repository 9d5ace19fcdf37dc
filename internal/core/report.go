package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sentinelcore/inehss/internal/model"
	"github.com/sentinelcore/inehss/internal/platform"
)

const reportColumns = `id, tracking_code, form_template_id, data, latitude, longitude, address,
	        status, priority, reporter_name, reporter_phone, reporter_email,
	        ip_address, user_agent, event_id, created_at, updated_at`

type ReportService struct {
	db             DB
	trackingPrefix string
}

func NewReportService(db DB, trackingPrefix string) *ReportService {
	return &ReportService{db: db, trackingPrefix: trackingPrefix}
}

// Create inserts a new report. The tracking code is generated here, exactly
// once; the unique constraint on the column backs the same-second guarantee.
func (s *ReportService) Create(ctx context.Context, rep *model.Report) error {
	now := time.Now()
	rep.ID = platform.NewID()
	rep.TrackingCode = platform.NewTrackingCode(s.trackingPrefix, now)
	if rep.Status == "" {
		rep.Status = model.ReportNew
	}
	if rep.Priority == "" {
		rep.Priority = model.PriorityMedium
	}
	if rep.Data == nil {
		rep.Data = []byte("{}")
	}
	rep.CreatedAt = now
	rep.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO reports (id, tracking_code, form_template_id, data, latitude, longitude, address,
		                      status, priority, reporter_name, reporter_phone, reporter_email,
		                      ip_address, user_agent, event_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		rep.ID, rep.TrackingCode, rep.FormTemplateID, rep.Data, rep.Latitude, rep.Longitude,
		rep.Address, rep.Status, rep.Priority, rep.ReporterName, rep.ReporterPhone,
		rep.ReporterEmail, rep.IPAddress, rep.UserAgent, rep.EventID, rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *ReportService) GetByID(ctx context.Context, id string) (*model.Report, error) {
	return s.getWhere(ctx, "id", id)
}

// GetByTrackingCode serves the public status-lookup path.
func (s *ReportService) GetByTrackingCode(ctx context.Context, code string) (*model.Report, error) {
	return s.getWhere(ctx, "tracking_code", code)
}

func (s *ReportService) getWhere(ctx context.Context, column, value string) (*model.Report, error) {
	var rep model.Report
	err := s.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE `+column+` = $1`, value,
	).Scan(&rep.ID, &rep.TrackingCode, &rep.FormTemplateID, &rep.Data, &rep.Latitude,
		&rep.Longitude, &rep.Address, &rep.Status, &rep.Priority, &rep.ReporterName,
		&rep.ReporterPhone, &rep.ReporterEmail, &rep.IPAddress, &rep.UserAgent,
		&rep.EventID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get report: %w: %s", ErrNotFound, err.Error())
	}
	return &rep, nil
}

// ReportFilters holds optional filters for listing reports.
type ReportFilters struct {
	Status   string
	Priority string
	// Search matches reporter name or tracking code, case-insensitively.
	Search string
}

func (s *ReportService) List(ctx context.Context, filters ReportFilters, limit int, cursor string) ([]model.Report, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + reportColumns + ` FROM reports`

	var conditions []string
	var args []any
	argN := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argN))
		args = append(args, filters.Status)
		argN++
	}
	if filters.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argN))
		args = append(args, filters.Priority)
		argN++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(reporter_name ILIKE $%d OR tracking_code ILIKE $%d)", argN, argN))
		args = append(args, "%"+filters.Search+"%")
		argN++
	}
	if cursor != "" {
		conditions = append(conditions, fmt.Sprintf("created_at < (SELECT created_at FROM reports WHERE id = $%d)", argN))
		args = append(args, cursor)
		argN++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argN)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(&rep.ID, &rep.TrackingCode, &rep.FormTemplateID, &rep.Data,
			&rep.Latitude, &rep.Longitude, &rep.Address, &rep.Status, &rep.Priority,
			&rep.ReporterName, &rep.ReporterPhone, &rep.ReporterEmail, &rep.IPAddress,
			&rep.UserAgent, &rep.EventID, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}

	hasMore := len(reports) > limit
	if hasMore {
		reports = reports[:limit]
	}
	return reports, hasMore, nil
}

// UpdateStatus sets the report lifecycle status. Staff only.
func (s *ReportService) UpdateStatus(ctx context.Context, id, status string, actor Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}
	switch status {
	case model.ReportNew, model.ReportAssigned, model.ReportInProgress, model.ReportResolved, model.ReportClosed:
	default:
		return fmt.Errorf("%w: unknown report status %q", ErrInvalidInput, status)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update report status: %w: report %s", ErrNotFound, id)
	}
	return nil
}

// SetLocation overwrites the report's coordinates. The officer's submitted
// location is authoritative over earlier unlocated citizen data.
func (s *ReportService) SetLocation(ctx context.Context, id string, lat, lng *float64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE reports SET latitude = $1, longitude = $2, updated_at = $3 WHERE id = $4`,
		lat, lng, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("set report location: %w", err)
	}
	return nil
}

// LinkEvent records the report's one-and-only event back-reference.
func (s *ReportService) LinkEvent(ctx context.Context, id, eventID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE reports SET event_id = $1, updated_at = $2 WHERE id = $3`,
		eventID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("link report event: %w", err)
	}
	return nil
}

// Delete removes a report. Reports referenced by assignments are protected;
// the foreign key restricts the delete and the violation surfaces as invalid
// input rather than a storage fault.
func (s *ReportService) Delete(ctx context.Context, id string, actor Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}

	var refs int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE report_id = $1`, id,
	).Scan(&refs); err != nil {
		return fmt.Errorf("count report references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: report has %d assignment(s)", ErrInvalidInput, refs)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete report: %w: report %s", ErrNotFound, id)
	}
	return nil
}
