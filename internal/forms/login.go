package forms

import (
	"context"
	"strings"

	"github.com/harentsoaR/thalcare/internal/models"
)

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

type LoginForm struct {
	Form
	api Authenticator
}

func NewLoginForm(api Authenticator, values map[string]string) *LoginForm {
	return &LoginForm{Form: newForm(values), api: api}
}

func (f *LoginForm) Submit(ctx context.Context) (Result, error) {
	var req models.LoginRequest
	err := f.begin(func(values map[string]string) models.FieldErrors {
		req = models.LoginRequest{Email: strings.TrimSpace(values["email"]), Password: values["password"]}
		return models.ValidateStruct(req)
	})
	if err != nil {
		return Result{}, err
	}

	res, err := f.api.Login(ctx, req.Email, req.Password)
	f.finish(err)
	if err != nil {
		return Result{}, err
	}
	return Result{Redirect: RedirectDashboard, Login: res, UserID: res.UserID}, nil
}
