// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserInfo struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserProvider is the credential store as seen by the session manager.
// Lookups only ever return active users.
type UserProvider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		username, email, passwordHash string,
	) (*UserInfo, error)
}

type Service struct {
	repo         Repository
	userProvider UserProvider
	validator    *validator.Validate
	ttl          time.Duration
	now          func() time.Time
}

func NewService(
	repo Repository,
	userProvider UserProvider,
	ttl time.Duration,
) *Service {
	return &Service{
		repo:         repo,
		userProvider: userProvider,
		validator:    core.NewValidator(),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Register creates the account and logs it in. Duplicate usernames or
// emails surface as core.DuplicateKeyError from the store's constraint.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	req.Normalize()

	if err := s.validator.Struct(req); err != nil {
		return nil, core.ValidationError(core.FormatValidationError(err))
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(
		ctx,
		req.Username,
		req.Email,
		passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createSession(ctx, user, userAgent, ipAddress)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	identifier := req.LoginIdentifier()
	if identifier == "" || req.Password == "" {
		//nolint:errcheck // timing attack prevention
		_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
		return nil, ErrInvalidCredentials
	}

	user, err := s.userProvider.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, user, userAgent, ipAddress)
}

// Logout revokes the session. A token that is already revoked or unknown
// is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := s.repo.RevokeByTokenHash(ctx, core.HashToken(token))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

// Authenticate resolves a token to its user id and restarts the session's
// expiry window from now.
func (s *Service) Authenticate(
	ctx context.Context,
	token string,
) (string, error) {
	if token == "" {
		return "", fmt.Errorf("authenticate: %w", core.ErrSessionInvalid)
	}

	now := s.now()
	userID, err := s.repo.Touch(
		ctx,
		core.HashToken(token),
		now,
		now.Add(s.ttl),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", fmt.Errorf("authenticate: %w", core.ErrSessionInvalid)
		}
		return "", fmt.Errorf("authenticate: %w", err)
	}

	return userID, nil
}

// CurrentUser re-reads the user on every call; a deactivated account
// yields core.ErrNotFound even while its session row still exists.
func (s *Service) CurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("current user: %w", core.ErrUnauthorized)
	}

	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-24 * time.Hour)

	n, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	return n, nil
}

func (s *Service) createSession(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	token, err := core.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: core.HashToken(token),
		ExpiresAt: s.now().Add(s.ttl),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Session: SessionResponse{
			Token:     token,
			ExpiresAt: session.ExpiresAt,
		},
	}, nil
}
