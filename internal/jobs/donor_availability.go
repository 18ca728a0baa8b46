// Package jobs holds the API server's scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/store"
)

// DonorAvailability makes donors available again once the cooldown since
// their last donation has passed.
type DonorAvailability struct {
	Store    store.Store
	Cooldown time.Duration
	Log      *zap.Logger

	now func() time.Time
}

func NewDonorAvailability(st store.Store, cooldown time.Duration, log *zap.Logger) *DonorAvailability {
	return &DonorAvailability{Store: st, Cooldown: cooldown, Log: log, now: time.Now}
}

// Start runs the job once an hour, the first run immediately.
func (j *DonorAvailability) Start() (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.Local)

	_, err := scheduler.Every(1).Hour().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := j.Run(ctx); err != nil {
			j.Log.Error("donor availability refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule donor availability: %w", err)
	}

	scheduler.StartAsync()
	j.Log.Info("donor availability job started")
	return scheduler, nil
}

// Run releases every donor past the cooldown and returns how many changed.
func (j *DonorAvailability) Run(ctx context.Context) (int64, error) {
	cutoff := models.DonationCutoff(j.now().UTC(), j.Cooldown)
	n, err := j.Store.ReleaseDonors(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.Log.Info("donors available again", zap.Int64("count", n), zap.String("cutoff", cutoff))
	}
	return n, nil
}
