package forms

import (
	"context"

	"github.com/harentsoaR/thalcare/internal/models"
)

// Registrar sends a registration to the API.
type Registrar interface {
	Signup(ctx context.Context, reg models.Registration) (*models.SignupResponse, error)
}

// Inputs on the signup page that are not part of any registration payload.
const (
	FieldConfirmPassword = "confirm_password"
	FieldTerms           = "terms"
)

// SignupForm is the role-aware registration form.
type SignupForm struct {
	Form
	role models.Role
	api  Registrar
}

func NewSignupForm(api Registrar, role models.Role, values map[string]string) *SignupForm {
	f := &SignupForm{Form: newForm(values), api: api}
	f.SetRole(role)
	return f
}

func (f *SignupForm) Role() models.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.role
}

// SetRole switches the account kind. Values of inputs the new role does
// not have are dropped; nothing is validated here.
func (f *SignupForm) SetRole(role models.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.role = role
	for name := range f.values {
		if name == FieldConfirmPassword || name == FieldTerms {
			continue
		}
		if !models.HasField(role, name) {
			delete(f.values, name)
		}
	}
}

// Fields lists the inputs to render for the current role.
func (f *SignupForm) Fields() []models.Field {
	return models.FieldsFor(f.Role())
}

// PasswordStrength rates the password entered so far.
func (f *SignupForm) PasswordStrength() Strength {
	return PasswordStrength(f.Value("password"))
}

// Submit validates the entered values and, when they pass, sends exactly
// one signup request.
func (f *SignupForm) Submit(ctx context.Context) (Result, error) {
	var reg models.Registration
	err := f.begin(func(values map[string]string) models.FieldErrors {
		var errs models.FieldErrors
		reg, errs = f.check(values)
		return errs
	})
	if err != nil {
		return Result{}, err
	}

	res, err := f.api.Signup(ctx, reg)
	f.finish(err)
	if err != nil {
		return Result{}, err
	}
	return Result{Redirect: RedirectVerifyEmail, UserID: res.UserID}, nil
}

// check runs with f.mu held.
func (f *SignupForm) check(values map[string]string) (models.Registration, models.FieldErrors) {
	reg, errs := models.NewRegistration(f.role, values)
	if reg != nil {
		errs = errs.Merge(models.Validate(reg))
	}
	if values["password"] != values[FieldConfirmPassword] {
		errs = errs.Merge(models.FieldErrors{FieldConfirmPassword: "Passwords do not match"})
	}
	if !models.ParseBool(values[FieldTerms]) {
		errs = errs.Merge(models.FieldErrors{FieldTerms: "Please accept the terms and conditions"})
	}
	return reg, errs
}
