package core

import (
	"context"
	"fmt"

	"github.com/sentinelcore/inehss/internal/model"
)

// UserService is a read-only view of the identity store; account issuance
// lives elsewhere. The workflow engine needs it to list assignable officers
// and to verify reassignment targets.
type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

// ListOfficers returns staff users assignable as investigating officers.
func (s *UserService) ListOfficers(ctx context.Context, actor Actor) ([]model.User, error) {
	if !actor.IsStaff {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, username, email, is_staff, created_at FROM users WHERE is_staff ORDER BY username ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list officers: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.IsStaff, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
