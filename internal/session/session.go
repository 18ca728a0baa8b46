// Package session keeps the signed-in state of a portal visitor: the API
// access token and the profile returned at login. A session is created at
// login, loaded on every request and destroyed at logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harentsoaR/thalcare/internal/models"
)

var ErrNotFound = errors.New("session: not found")

type Session struct {
	ID          string         `json:"id"`
	AccessToken string         `json:"access_token"`
	UserID      string         `json:"user_id"`
	Profile     models.Profile `json:"profile"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Store persists sessions by ID.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Start records a successful login and returns the new session.
func (m *Manager) Start(ctx context.Context, login *models.LoginResponse) (*Session, error) {
	if login == nil || login.AccessToken == "" {
		return nil, errors.New("session: login carries no access token")
	}
	s := &Session{
		ID:          uuid.NewString(),
		AccessToken: login.AccessToken,
		UserID:      login.UserID,
		Profile:     login.Profile,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.store.Put(ctx, s, m.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Init loads the session a request refers to.
func (m *Manager) Init(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return m.store.Get(ctx, id)
}

// Teardown forgets the session. Unknown IDs are not an error.
func (m *Manager) Teardown(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
