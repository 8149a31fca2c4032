// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

const testTTL = time.Hour

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeUsers, *clock) {
	t.Helper()
	repo := newFakeRepo()
	users := newFakeUsers()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(repo, users, testTTL)
	svc.now = c.now
	return svc, repo, users, c
}

func register(t *testing.T, svc *Service, username string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	}, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	return resp
}

func TestRegisterIssuesWorkingSession(t *testing.T) {
	svc, repo, _, c := newTestService(t)
	ctx := context.Background()

	resp := register(t, svc, "alice")
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Len(t, resp.Session.Token, 43)
	assert.Equal(t, c.t.Add(testTTL), resp.Session.ExpiresAt)

	stored := repo.session(resp.Session.Token)
	require.NotNil(t, stored)
	assert.NotEqual(t, resp.Session.Token, stored.TokenHash)
	assert.Equal(t, "test-agent", stored.UserAgent)

	userID, err := svc.Authenticate(ctx, resp.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

func TestRegisterDoesNotStorePlaintextPassword(t *testing.T) {
	svc, _, users, _ := newTestService(t)

	resp := register(t, svc, "alice")

	u, err := users.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	ok, err := core.VerifyPassword("correct-horse", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@b.c", Password: "secret1"}},
		{"short username", RegisterRequest{Username: "ab", Email: "a@b.c", Password: "secret1"}},
		{"bad email", RegisterRequest{Username: "alice", Email: "nope", Password: "secret1"}},
		{"short password", RegisterRequest{Username: "alice", Email: "a@b.c", Password: "123"}},
		{"blank username", RegisterRequest{Username: "   ", Email: "a@b.c", Password: "secret1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, users, _ := newTestService(t)

			_, err := svc.Register(context.Background(), tt.req, "", "")
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
			assert.Empty(t, users.byID)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc, "alice")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "correct-horse",
	}, "", "")

	var dup *core.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	registered := register(t, svc, "alice")
	ctx := context.Background()

	t.Run("by username", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{
			Username: "alice",
			Password: "correct-horse",
		}, "", "")
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotEqual(t, registered.Session.Token, resp.Session.Token)
	})

	t.Run("by email any case", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{
			Identifier: "ALICE@example.com",
			Password:   "correct-horse",
		}, "", "")
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
	})
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, users, _ := newTestService(t)
	register(t, svc, "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Username: "alice", Password: "wrong-horse"}},
		{"unknown user", LoginRequest{Username: "bob", Password: "correct-horse"}},
		{"missing password", LoginRequest{Username: "alice"}},
		{"missing identifier", LoginRequest{Password: "correct-horse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req, "", "")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	assert.Equal(t, 2, users.lookup)
}

func TestAuthenticateSlidesExpiry(t *testing.T) {
	svc, repo, _, c := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "alice")

	c.advance(50 * time.Minute)
	_, err := svc.Authenticate(ctx, resp.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(testTTL), repo.session(resp.Session.Token).ExpiresAt)

	c.advance(50 * time.Minute)
	_, err = svc.Authenticate(ctx, resp.Session.Token)
	require.NoError(t, err, "activity keeps the session alive past the original ttl")

	c.advance(testTTL + time.Second)
	_, err = svc.Authenticate(ctx, resp.Session.Token)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestAuthenticateRejects(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "alice")

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, core.ErrSessionInvalid)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not-a-real-token")
		assert.ErrorIs(t, err, core.ErrSessionInvalid)
	})

	t.Run("inactive user", func(t *testing.T) {
		repo.inactive[resp.User.ID] = true
		defer delete(repo.inactive, resp.User.ID)

		_, err := svc.Authenticate(ctx, resp.Session.Token)
		assert.ErrorIs(t, err, core.ErrSessionInvalid)
	})
}

func TestLogout(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "alice")

	require.NoError(t, svc.Logout(ctx, resp.Session.Token))

	_, err := svc.Authenticate(ctx, resp.Session.Token)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)

	assert.NoError(t, svc.Logout(ctx, resp.Session.Token))
	assert.NoError(t, svc.Logout(ctx, "unknown"))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestLogoutLeavesOtherSessions(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	first := register(t, svc, "alice")

	second, err := svc.Login(ctx, LoginRequest{
		Username: "alice",
		Password: "correct-horse",
	}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.Session.Token))

	userID, err := svc.Authenticate(ctx, second.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, userID)
}

func TestCurrentUser(t *testing.T) {
	svc, _, users, _ := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "alice")

	got, err := svc.CurrentUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	users.remove(resp.User.ID)
	_, err = svc.CurrentUser(ctx, resp.User.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, _, _, c := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "alice")

	n, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	c.advance(testTTL + 25*time.Hour)
	n, err = svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Authenticate(ctx, resp.Session.Token)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}
