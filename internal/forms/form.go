// Package forms holds the state behind the signup and login pages: the
// entered values, their validation and the lifecycle of one submission.
package forms

import (
	"errors"
	"sync"

	"github.com/harentsoaR/thalcare/internal/apiclient"
	"github.com/harentsoaR/thalcare/internal/models"
)

type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Pages a successful submission sends the user to.
const (
	RedirectVerifyEmail = "/verify-email"
	RedirectDashboard   = "/dashboard"
)

const msgFixFields = "Please fix the highlighted fields."

// ErrSubmitInFlight is returned when Submit is called while an earlier
// submission of the same form has not resolved yet.
var ErrSubmitInFlight = errors.New("forms: submission already in progress")

// ValidationError lists the fields that blocked a submission before any
// request was sent.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

// State is a snapshot of a form for rendering.
type State struct {
	Status  Status
	Message string
	Fields  models.FieldErrors
}

// Submitting reports whether the submit control should be disabled.
func (s State) Submitting() bool { return s.Status == StatusSubmitting }

// Result tells the caller where to go after a successful submission.
type Result struct {
	Redirect string
	Login    *models.LoginResponse
	UserID   string
}

// Form binds input names to values and tracks one submission at a time.
type Form struct {
	mu      sync.Mutex
	values  map[string]string
	status  Status
	message string
	fields  models.FieldErrors
}

func newForm(values map[string]string) Form {
	v := make(map[string]string, len(values))
	for k, s := range values {
		v[k] = s
	}
	return Form{values: v}
}

func (f *Form) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value == "" {
		delete(f.values, name)
		return
	}
	f.values[name] = value
}

func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Values returns a copy of the entered values.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields := make(models.FieldErrors, len(f.fields))
	for k, v := range f.fields {
		fields[k] = v
	}
	return State{Status: f.status, Message: f.message, Fields: fields}
}

// begin runs check against the current values and moves the form to
// Submitting when it passes. Nothing is sent when it fails.
func (f *Form) begin(check func(values map[string]string) models.FieldErrors) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusSubmitting {
		return ErrSubmitInFlight
	}
	if errs := check(f.values); len(errs) > 0 {
		f.status = StatusError
		f.message = msgFixFields
		f.fields = errs
		return &ValidationError{Fields: errs}
	}
	f.status = StatusSubmitting
	f.message = ""
	f.fields = nil
	return nil
}

// finish records the outcome of the request started by begin. The entered
// values are dropped on success and kept on failure so they can be fixed.
func (f *Form) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		f.status = StatusSuccess
		f.values = map[string]string{}
		return
	}
	f.status = StatusError
	f.message = apiclient.UserMessage(err)
	f.fields = models.FieldErrors(apiclient.FieldMessages(err))
}
