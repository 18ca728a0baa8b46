package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrConnectivity  = errors.New("server unreachable")
	ErrValidation    = errors.New("request rejected")
	ErrAccountExists = errors.New("account already exists")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrNotFound      = errors.New("not found")
	ErrServer        = errors.New("server error")
)

const (
	MsgConnectivity  = "Unable to reach the server. Please check your connection and try again."
	MsgAccountExists = "An account with this email already exists."
	MsgServer        = "Something went wrong on our end. Please try again later."
	MsgUnauthorized  = "Invalid email or password."
	MsgFieldErrors   = "Please correct the highlighted fields."
	MsgRejected      = "The request was rejected. Please check your input."
)

// Error is returned by every Client call that does not succeed. Message is
// fit to show to the user as is; Fields carries per-field messages when the
// server reported them.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string

	kind error
	err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.kind.Error())
	if e.StatusCode != 0 {
		b.WriteString(" (")
		b.WriteString(http.StatusText(e.StatusCode))
		b.WriteString(")")
	}
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	} else if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.err }

// IsRetryable reports whether resubmitting the same request may succeed.
// Only connectivity failures, timeouts included, qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

// UserMessage returns the text a page should display for err.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return MsgConnectivity
}

// FieldMessages returns the server-reported per-field messages of err.
func FieldMessages(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// parseError maps a non-2xx response onto the error taxonomy.
func parseError(status int, body []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	detail, fields := "", map[string]string(nil)
	if len(eb.Detail) > 0 {
		var s string
		var items []detailItem
		switch {
		case json.Unmarshal(eb.Detail, &s) == nil:
			detail = s
		case json.Unmarshal(eb.Detail, &items) == nil:
			fields = make(map[string]string, len(items))
			for _, it := range items {
				name := fieldName(it.Loc)
				if _, dup := fields[name]; !dup {
					fields[name] = it.Msg
				}
			}
		}
	}
	if detail == "" {
		detail = eb.Error
	}

	e := &Error{StatusCode: status, Message: detail, Fields: fields}
	switch {
	case status == http.StatusConflict:
		e.kind, e.Message = ErrAccountExists, MsgAccountExists
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.kind = ErrValidation
		if e.Message == "" {
			e.Message = MsgRejected
			if len(fields) > 0 {
				e.Message = MsgFieldErrors
			}
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.kind = ErrUnauthorized
		if e.Message == "" {
			e.Message = MsgUnauthorized
		}
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
		if e.Message == "" {
			e.Message = "The requested record was not found."
		}
	case status >= 500:
		e.kind, e.Message = ErrServer, MsgServer
	default:
		e.kind = ErrServer
		if e.Message == "" {
			e.Message = MsgServer
		}
	}
	return e
}

// fieldName picks the last string element of a FastAPI style loc path,
// e.g. ["body", "first_name"].
func fieldName(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		if s, ok := loc[i].(string); ok && s != "body" {
			return s
		}
	}
	return ""
}
