package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/store"
)

func addDonor(t *testing.T, st *store.Memory, id, lastDonation string) {
	t.Helper()
	unavailable := false
	p := models.Profile{
		ID:        id,
		UserType:  models.RoleDonor,
		Available: &unavailable,
		Specific:  models.SpecificData{"last_donation_date": lastDonation, "available": false},
	}
	require.NoError(t, st.CreateAccount(context.Background(), models.User{ID: id, Email: id + "@example.com"}, p))
}

func TestDonorAvailabilityRun(t *testing.T) {
	st := store.NewMemory()
	addDonor(t, st, "old", "2026-05-01")
	addDonor(t, st, "edge", "2026-07-03")
	addDonor(t, st, "recent", "2026-09-01")

	job := NewDonorAvailability(st, 90*24*time.Hour, zap.NewNop())
	job.now = func() time.Time { return time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC) }

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for id, want := range map[string]bool{"old": true, "edge": true, "recent": false} {
		p, err := st.Profile(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, *p.Available, id)
	}

	n, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDonorAvailabilityStart(t *testing.T) {
	job := NewDonorAvailability(store.NewMemory(), time.Hour, zap.NewNop())
	s, err := job.Start()
	require.NoError(t, err)
	defer s.Stop()
	assert.True(t, s.IsRunning())
	assert.Len(t, s.Jobs(), 1)
}
