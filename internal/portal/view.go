package portal

import (
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/harentsoaR/thalcare/internal/dashboard"
	"github.com/harentsoaR/thalcare/internal/forms"
	"github.com/harentsoaR/thalcare/internal/models"
)

var templateFuncs = template.FuncMap{
	"formatValue": formatValue,
	"boolValue":   boolValue,
	"yesNo":       yesNo,
}

// formatValue renders a specific data value for display.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "Not provided"
	case string:
		if x == "" {
			return "Not provided"
		}
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(x, ", ")
	}
	return fmt.Sprint(v)
}

func boolValue(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func yesNo(b *bool) string {
	if b == nil {
		return ""
	}
	return formatValue(*b)
}

type fieldView struct {
	models.Field
	Value   string
	Error   string
	Checked bool
}

type roleOption struct {
	Role     models.Role
	Title    string
	Selected bool
}

type signupView struct {
	FormID   string
	Roles    []roleOption
	Role     models.Role
	Fields   []fieldView
	State    forms.State
	Strength *forms.Strength
	Confirm  fieldView
	Terms    fieldView
}

// newFormID keeps the id a form was rendered with, or mints one for a
// fresh rendering.
func newFormID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func newSignupView(form *forms.SignupForm, formID string) signupView {
	values := form.Values()
	state := form.State()
	role := form.Role()

	v := signupView{FormID: newFormID(formID), Role: role, State: state}
	for _, r := range models.Roles {
		v.Roles = append(v.Roles, roleOption{Role: r, Title: r.Title(), Selected: r == role})
	}
	if !role.Valid() {
		return v
	}
	for _, f := range form.Fields() {
		fv := fieldView{Field: f, Error: state.Fields[f.Name]}
		switch f.Kind {
		case models.KindPassword:
			// Passwords are never echoed back.
		case models.KindCheckbox:
			fv.Checked = models.ParseBool(values[f.Name])
		default:
			fv.Value = values[f.Name]
		}
		v.Fields = append(v.Fields, fv)
	}
	v.Confirm = fieldView{
		Field: models.Field{Name: forms.FieldConfirmPassword, Label: "Confirm Password", Kind: models.KindPassword, Required: true},
		Error: state.Fields[forms.FieldConfirmPassword],
	}
	v.Terms = fieldView{
		Field:   models.Field{Name: forms.FieldTerms, Label: "I accept the terms and conditions", Kind: models.KindCheckbox, Required: true},
		Error:   state.Fields[forms.FieldTerms],
		Checked: models.ParseBool(values[forms.FieldTerms]),
	}
	if values["password"] != "" {
		st := form.PasswordStrength()
		v.Strength = &st
	}
	return v
}

type loginView struct {
	Email  string
	State  forms.State
	FormID string
}

type tabView struct {
	dashboard.Tab
	Href string
}

type resultView struct {
	models.Profile
	DetailHref string
}

type dashboardView struct {
	dashboard.View
	User      models.Profile
	UserName  string
	Tabs      []tabView
	Filters   url.Values
	Results   []resultView
	Blood     []string
	Severity  []string
	Filtered  bool
	ClearHref string
}

func newDashboardView(v dashboard.View, user models.Profile) dashboardView {
	filters := v.Criteria.Values()
	out := dashboardView{
		View:      v,
		User:      user,
		UserName:  user.DisplayName(),
		Filters:   filters,
		Blood:     models.BloodTypes,
		Severity:  models.SeverityLevels,
		Filtered:  len(filters) > 0,
		ClearHref: "/dashboard?tab=" + url.QueryEscape(string(v.Active)),
	}
	for _, t := range v.Tabs {
		q := url.Values{}
		for k, vs := range filters {
			q[k] = vs
		}
		q.Set("tab", string(t.Category))
		out.Tabs = append(out.Tabs, tabView{Tab: t, Href: "/dashboard?" + q.Encode()})
	}
	out.Results = make([]resultView, 0, len(v.Results))
	for _, p := range v.Results {
		out.Results = append(out.Results, resultView{
			Profile:    p,
			DetailHref: "/dashboard/profiles/" + url.PathEscape(p.ID) + "?type=" + url.QueryEscape(string(p.UserType)),
		})
	}
	return out
}

type detailRow struct {
	Label string
	Value any
}

type detailView struct {
	ID    string
	Rows  []detailRow
	Error string
}

// detailRows lists the entries worth showing for role, or every entry in
// key order when the role is unknown.
func detailRows(role models.Role, data models.SpecificData) []detailRow {
	if fields := models.DetailFields(role); fields != nil {
		rows := make([]detailRow, 0, len(fields))
		for _, f := range fields {
			if v, ok := data[f.Key]; ok {
				rows = append(rows, detailRow{Label: f.Label, Value: v})
			}
		}
		return rows
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]detailRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, detailRow{Label: k, Value: data[k]})
	}
	return rows
}
