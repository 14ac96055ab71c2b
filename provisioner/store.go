package provisioner

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PostgresStore writes profiles to the users table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) Upsert(ctx context.Context, profile Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, email, role, approved, email_verified)
		VALUES ($1, $2, $3, $4, $5, false)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			approved = EXCLUDED.approved,
			updated_at = CURRENT_TIMESTAMP
	`, profile.ID, profile.FullName, profile.Email, profile.Role, profile.Approved)
	return err
}
