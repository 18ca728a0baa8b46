package models

import "time"

// User is the credential record behind a profile. Both share the same ID.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role      Role      `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,emailaddr"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// LoginResponse is the body of a successful POST /login.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	UserID      string  `json:"user_id"`
	Profile     Profile `json:"profile"`
}

// SignupResponse is the body of a successful POST /signup.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}
