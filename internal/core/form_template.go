package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelcore/inehss/internal/model"
	"github.com/sentinelcore/inehss/internal/platform"
)

const formTemplateColumns = `id, name, description, form_type, is_active, schema,
	        map_icon, map_color, event_category, created_at, updated_at`

type FormTemplateService struct {
	db DB
}

func NewFormTemplateService(db DB) *FormTemplateService {
	return &FormTemplateService{db: db}
}

func (s *FormTemplateService) Create(ctx context.Context, tmpl *model.FormTemplate, actor Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}

	now := time.Now()
	tmpl.ID = platform.NewID()
	if tmpl.Schema == nil {
		tmpl.Schema = []byte("[]")
	}
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO form_templates (id, name, description, form_type, is_active, schema,
		                             map_icon, map_color, event_category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tmpl.ID, tmpl.Name, tmpl.Description, tmpl.FormType, tmpl.IsActive, tmpl.Schema,
		tmpl.MapIcon, tmpl.MapColor, tmpl.EventCategory, tmpl.CreatedAt, tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create form template: %w", err)
	}
	return nil
}

func (s *FormTemplateService) GetByID(ctx context.Context, id string) (*model.FormTemplate, error) {
	var tmpl model.FormTemplate
	err := s.db.QueryRow(ctx,
		`SELECT `+formTemplateColumns+` FROM form_templates WHERE id = $1`, id,
	).Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.FormType, &tmpl.IsActive,
		&tmpl.Schema, &tmpl.MapIcon, &tmpl.MapColor, &tmpl.EventCategory,
		&tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get form template: %w: %s", ErrNotFound, err.Error())
	}
	return &tmpl, nil
}

// List returns templates. Staff see everything; the public sees only active
// public forms.
func (s *FormTemplateService) List(ctx context.Context, actor Actor) ([]model.FormTemplate, error) {
	query := `SELECT ` + formTemplateColumns + ` FROM form_templates`
	var args []any
	if !actor.IsStaff {
		query += ` WHERE is_active AND form_type = $1`
		args = append(args, model.FormTypePublic)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list form templates: %w", err)
	}
	defer rows.Close()

	var templates []model.FormTemplate
	for rows.Next() {
		var tmpl model.FormTemplate
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.FormType,
			&tmpl.IsActive, &tmpl.Schema, &tmpl.MapIcon, &tmpl.MapColor,
			&tmpl.EventCategory, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan form template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (s *FormTemplateService) Update(ctx context.Context, tmpl *model.FormTemplate, actor Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}

	tmpl.UpdatedAt = time.Now()
	tag, err := s.db.Exec(ctx,
		`UPDATE form_templates SET name = $1, description = $2, form_type = $3, is_active = $4,
		        schema = $5, map_icon = $6, map_color = $7, event_category = $8, updated_at = $9
		 WHERE id = $10`,
		tmpl.Name, tmpl.Description, tmpl.FormType, tmpl.IsActive, tmpl.Schema,
		tmpl.MapIcon, tmpl.MapColor, tmpl.EventCategory, tmpl.UpdatedAt, tmpl.ID,
	)
	if err != nil {
		return fmt.Errorf("update form template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update form template: %w: template %s", ErrNotFound, tmpl.ID)
	}
	return nil
}

// Delete removes a template unless reports or assignments still reference it.
func (s *FormTemplateService) Delete(ctx context.Context, id string, actor Actor) error {
	if !actor.IsStaff {
		return fmt.Errorf("%w: staff only", ErrForbidden)
	}

	var refs int
	if err := s.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM reports WHERE form_template_id = $1)
		      + (SELECT COUNT(*) FROM assignments WHERE inspection_form_id = $1)`, id,
	).Scan(&refs); err != nil {
		return fmt.Errorf("count template references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: template is referenced by %d record(s)", ErrInvalidInput, refs)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM form_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete form template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete form template: %w: template %s", ErrNotFound, id)
	}
	return nil
}
