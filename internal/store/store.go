// Package store persists accounts and profiles for the API server.
package store

import (
	"context"
	"errors"

	"github.com/harentsoaR/thalcare/internal/models"
)

var (
	ErrEmailTaken = errors.New("an account with this email already exists")
	ErrNotFound   = errors.New("not found")
)

// DefaultLimit and MaxLimit bound a profile listing page.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Query selects profiles. Zero values impose no constraint.
type Query struct {
	Role     models.Role
	Criteria models.Criteria
	Limit    int
	Offset   int
}

// Page clamps Limit and Offset to the accepted range.
func (q Query) Page() (limit, offset int) {
	limit, offset = q.Limit, q.Offset
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ContactUpdate changes the editable contact fields of a profile. Nil
// fields are left alone.
type ContactUpdate struct {
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Available *bool   `json:"available,omitempty"`
}

func (u ContactUpdate) Empty() bool {
	return u.Phone == nil && u.Address == nil && u.City == nil && u.State == nil && u.Available == nil
}

type Store interface {
	// CreateAccount stores the credentials and the profile of a new account.
	CreateAccount(ctx context.Context, user models.User, profile models.Profile) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	Profile(ctx context.Context, id string) (*models.Profile, error)
	ListProfiles(ctx context.Context, q Query) ([]models.Profile, error)
	// CountByRole counts profiles per role among those matching c.
	CountByRole(ctx context.Context, c models.Criteria) (models.Stats, error)
	UpdateContact(ctx context.Context, id string, u ContactUpdate) (*models.Profile, error)
	// ReleaseDonors marks donors whose last donation is on or before cutoff
	// (YYYY-MM-DD) as available again and returns how many changed.
	ReleaseDonors(ctx context.Context, cutoff string) (int64, error)
}
