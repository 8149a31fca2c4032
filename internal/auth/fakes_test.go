// AngelaMos | 2026
// fakes_test.go

package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session
	inactive map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[string]*Session),
		inactive: make(map[string]bool),
	}
}

func (f *fakeRepo) Create(_ context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.CreatedAt = time.Now()
	cp := *s
	f.sessions[s.TokenHash] = &cp
	return nil
}

func (f *fakeRepo) Touch(
	_ context.Context,
	tokenHash string,
	now, expiresAt time.Time,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenHash]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(now) ||
		f.inactive[s.UserID] {
		return "", core.ErrNotFound
	}
	s.ExpiresAt = expiresAt
	return s.UserID, nil
}

func (f *fakeRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenHash]
	if !ok || s.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (f *fakeRepo) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, s := range f.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeRepo) DeleteExpired(
	_ context.Context,
	cutoff time.Time,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, s := range f.sessions {
		if s.ExpiresAt.Before(cutoff) ||
			(s.RevokedAt != nil && s.RevokedAt.Before(cutoff)) {
			delete(f.sessions, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) session(token string) *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[core.HashToken(token)]
}

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*UserInfo
	lookup int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*UserInfo)}
}

func (f *fakeUsers) Create(
	_ context.Context,
	username, email, passwordHash string,
) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return nil, &core.DuplicateKeyError{Field: "username"}
		}
		if u.Email == email {
			return nil, &core.DuplicateKeyError{Field: "email"}
		}
	}
	u := &UserInfo{
		ID:           "user-" + username,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByIdentifier(
	_ context.Context,
	identifier string,
) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookup++
	for _, u := range f.byID {
		if u.Username == identifier {
			return u, nil
		}
	}
	for _, u := range f.byID {
		if u.Email == strings.ToLower(identifier) {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}
