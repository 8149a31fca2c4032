// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	Deactivate(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create relies on the table's unique constraints, not a prior read, so two
// concurrent registrations for the same name cannot both succeed.
func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING is_active, created_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
	)
	if err != nil {
		if field, ok := duplicateField(err); ok {
			return fmt.Errorf(
				"create user: %w",
				&core.DuplicateKeyError{Field: field},
			)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE id = $1 AND is_active`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByIdentifier matches the username exactly or the email
// case-insensitively. An exact username match wins over an email match.
func (r *repository) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE is_active AND (username = $1 OR email = LOWER($1))
		ORDER BY (username = $1) DESC
		LIMIT 1`

	var user User
	err := r.db.GetContext(ctx, &user, query, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by identifier: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by identifier: %w", err)
	}

	return &user, nil
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET is_active = FALSE
		WHERE id = $1 AND is_active`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("deactivate user: %w", core.ErrNotFound)
	}

	return nil
}

func duplicateField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return "", false
	}

	switch pgErr.ConstraintName {
	case "users_username_key":
		return "username", true
	case "users_email_key":
		return "email", true
	default:
		return "account", true
	}
}
