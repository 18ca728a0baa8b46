package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/profilefilter"
)

// Memory is a Store kept in process, used in development when no MongoDB
// URI is configured and in tests.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	byEmail  map[string]string
	profiles []models.Profile
}

func NewMemory() *Memory {
	return &Memory{users: map[string]models.User{}, byEmail: map[string]string{}}
}

func (m *Memory) CreateAccount(_ context.Context, user models.User, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := m.byEmail[email]; ok {
		return ErrEmailTaken
	}
	m.users[user.ID] = user
	m.byEmail[email] = user.ID
	m.profiles = append(m.profiles, profile)
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) Profile(_ context.Context, id string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListProfiles(_ context.Context, q Query) ([]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit, offset := q.Page()
	out := []models.Profile{}
	skipped := 0
	for _, p := range m.profiles {
		if q.Role != "" && p.UserType != q.Role {
			continue
		}
		if !profilefilter.Match(p, q.Criteria) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) CountByRole(_ context.Context, c models.Criteria) (models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s models.Stats
	for _, p := range m.profiles {
		if profilefilter.Match(p, c) {
			s.Set(p.UserType, s.Count(p.UserType)+1)
		}
	}
	return s, nil
}

func (m *Memory) UpdateContact(_ context.Context, id string, u ContactUpdate) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		p := &m.profiles[i]
		if p.ID != id {
			continue
		}
		if u.Phone != nil {
			p.Phone = *u.Phone
		}
		if u.Address != nil {
			p.Address = *u.Address
		}
		if u.City != nil {
			p.City = *u.City
		}
		if u.State != nil {
			p.State = *u.State
		}
		if u.Available != nil && p.Available != nil {
			v := *u.Available
			p.Available = &v
			p.Specific = cloneSpecific(p.Specific)
			p.Specific["available"] = v
		}
		p.UpdatedAt = time.Now().UTC()
		out := *p
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) ReleaseDonors(_ context.Context, cutoff string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.profiles {
		p := &m.profiles[i]
		if p.UserType != models.RoleDonor || p.Available == nil || *p.Available {
			continue
		}
		last, _ := p.Specific["last_donation_date"].(string)
		if last == "" || last > cutoff {
			continue
		}
		yes := true
		p.Available = &yes
		p.Specific = cloneSpecific(p.Specific)
		p.Specific["available"] = true
		n++
	}
	return n, nil
}

func cloneSpecific(s models.SpecificData) models.SpecificData {
	out := make(models.SpecificData, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}
