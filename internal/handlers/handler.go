package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/services"
	"github.com/harentsoaR/thalcare/internal/store"
	"github.com/harentsoaR/thalcare/internal/utils"
)

// Handler carries what every API endpoint needs.
type Handler struct {
	Store           store.Store
	Tokens          *utils.TokenIssuer
	NotificationSvc *services.NotificationService
	Log             *zap.Logger
	// DonorCooldown is how long after a donation a donor stays unavailable.
	DonorCooldown time.Duration

	now func() time.Time
}

func NewHandler(st store.Store, tokens *utils.TokenIssuer, notificationSvc *services.NotificationService, log *zap.Logger, donorCooldown time.Duration) *Handler {
	return &Handler{
		Store:           st,
		Tokens:          tokens,
		NotificationSvc: notificationSvc,
		Log:             log,
		DonorCooldown:   donorCooldown,
		now:             time.Now,
	}
}
