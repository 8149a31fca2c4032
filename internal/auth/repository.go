// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	Touch(
		ctx context.Context,
		tokenHash string,
		now, expiresAt time.Time,
	) (string, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, token_hash, expires_at, user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &session.CreatedAt, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.UserAgent,
		session.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// Touch validates and slides a session in one conditional write: the row is
// only updated while unrevoked, unexpired and owned by an active user.
func (r *repository) Touch(
	ctx context.Context,
	tokenHash string,
	now, expiresAt time.Time,
) (string, error) {
	query := `
		UPDATE sessions s
		SET expires_at = $3
		FROM users u
		WHERE s.token_hash = $1
			AND s.revoked_at IS NULL
			AND s.expires_at > $2
			AND u.id = s.user_id
			AND u.is_active
		RETURNING s.user_id`

	var userID string
	err := r.db.GetContext(ctx, &userID, query, tokenHash, now, expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("touch session: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("touch session: %w", err)
	}

	return userID, nil
}

func (r *repository) RevokeByTokenHash(
	ctx context.Context,
	tokenHash string,
) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) RevokeAllForUser(
	ctx context.Context,
	userID string,
) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("revoke all user sessions: %w", err)
	}

	return nil
}

func (r *repository) DeleteExpired(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < $1 OR revoked_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return rows, nil
}
