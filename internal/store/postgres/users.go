package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, password, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.Password, string(u.Role),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapErr("insert user", err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, password, created_at, updated_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr("get user by email", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr("get user", err)
	}
	return &u, nil
}
