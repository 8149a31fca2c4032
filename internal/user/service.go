// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/moodflow/internal/auth"
	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

// Service is the Credential Store. It backs the session manager through
// auth.UserProvider and owns account deactivation.
type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(repo Repository, db *sqlx.DB) *Service {
	return &Service{repo: repo, db: db}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	username, email, passwordHash string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Deactivate soft-deletes the account and revokes every session it holds
// in the same transaction.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("deactivate user: %w", core.ErrInvalidInput)
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := NewRepository(tx).Deactivate(ctx, id); err != nil {
			return err
		}
		return auth.NewRepository(tx).RevokeAllForUser(ctx, id)
	})
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
