package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/middleware"
	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/store"
	"github.com/harentsoaR/thalcare/internal/utils"
)

// validationDetail is one entry of a 422 body.
type validationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func validationDetails(fe models.FieldErrors) []validationDetail {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]validationDetail, 0, len(names))
	for _, name := range names {
		out = append(out, validationDetail{Loc: []string{"body", name}, Msg: fe[name], Type: "value_error"})
	}
	return out
}

// Signup registers an account of any role. The body is a registration
// whose user_type picks the variant.
func (h *Handler) Signup(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	reg, err := models.DecodeRegistration(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if fe := models.Validate(reg); len(fe) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails(fe)})
		return
	}

	hashedPassword, err := utils.HashPassword(reg.Base().Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails(models.FieldErrors{
			"password": "Password must be at most 72 characters",
		})})
		return
	}
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	now := h.now().UTC()
	donorAvailable := true
	if d, ok := reg.(*models.DonorRegistration); ok {
		donorAvailable = d.LastDonation <= models.DonationCutoff(now, h.DonorCooldown)
	}
	user, profile := models.NewAccount(primitive.NewObjectID().Hex(), reg, hashedPassword, donorAvailable, now)

	if err := h.Store.CreateAccount(c.Request.Context(), user, profile); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"detail": "An account with this email already exists"})
			return
		}
		h.Log.Error("create account", zap.String("role", string(user.Role)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}
	h.Log.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	h.NotificationSvc.SendRegistrationConfirmationSMS(profile)

	c.JSON(http.StatusCreated, models.SignupResponse{
		Message: "Registration successful. Please verify your email.",
		UserID:  user.ID,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email and password are required"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
		return
	}
	if err != nil {
		h.Log.Error("find user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
		return
	}

	token, err := h.Tokens.GenerateJWT(user.ID, user.Role)
	if err != nil {
		h.Log.Error("generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not generate token"})
		return
	}
	profile, err := h.Store.Profile(ctx, user.ID)
	if err != nil {
		h.Log.Error("load profile", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{AccessToken: token, UserID: user.ID, Profile: *profile})
}

// GetCurrentUser returns the profile of the authenticated account.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	profile, err := h.Store.Profile(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	if err != nil {
		h.Log.Error("load profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateCurrentUser changes the contact fields of the authenticated account.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	var req store.ContactUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No update fields provided"})
		return
	}

	profile, err := h.Store.UpdateContact(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	if err != nil {
		h.Log.Error("update profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
