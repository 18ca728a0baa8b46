package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
)

var ErrNoPhone = errors.New("profile has no phone number")

// NotificationService sends SMS through Textbelt.
type NotificationService struct {
	key  string
	url  string
	http *http.Client
	log  *zap.Logger
}

func NewNotificationService(key, url string, log *zap.Logger) *NotificationService {
	return &NotificationService{
		key:  key,
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// Enabled reports whether an API key is configured.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.key != ""
}

// SendRegistrationConfirmationSMS welcomes a new account by SMS without
// blocking the caller. Accounts without a phone number are skipped.
func (s *NotificationService) SendRegistrationConfirmationSMS(p models.Profile) {
	if !s.Enabled() {
		return
	}
	if p.Phone == "" {
		s.log.Debug("SMS not sent: profile has no phone number", zap.String("profile_id", p.ID))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.SendRegistrationConfirmation(ctx, p); err != nil {
			s.log.Warn("registration SMS failed", zap.String("profile_id", p.ID), zap.Error(err))
			return
		}
		s.log.Info("registration SMS sent", zap.String("profile_id", p.ID))
	}()
}

// SendRegistrationConfirmation sends the welcome SMS and waits for
// Textbelt's answer.
func (s *NotificationService) SendRegistrationConfirmation(ctx context.Context, p models.Profile) error {
	if p.Phone == "" {
		return ErrNoPhone
	}
	return s.send(ctx, p.Phone, registrationMessage(p))
}

func registrationMessage(p models.Profile) string {
	return fmt.Sprintf(
		"Welcome to ThalCare, %s! Your %s account is ready. Please verify your email to get started.",
		p.DisplayName(),
		p.UserType,
	)
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.key,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected SMS: %s", result.Error)
	}
	return nil
}
