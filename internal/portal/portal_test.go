package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/thalcare/internal/apiclient"
	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/session"
)

type fakeAPI struct {
	mu      sync.Mutex
	signups []models.Registration
	logins  int

	signupErr  error
	loginErr   error
	profiles   []models.Profile
	profileErr error
	detail     models.SpecificData
	detailErr  error

	// signupStarted, when set, is signalled as a signup reaches the API;
	// the call then waits for signupRelease to close.
	signupStarted chan struct{}
	signupRelease chan struct{}

	loginRole      models.Role
	resources      *models.PatientResources
	resourcesErr   error
	resourcesAsked []string
}

func (f *fakeAPI) Signup(_ context.Context, reg models.Registration) (*models.SignupResponse, error) {
	if f.signupStarted != nil {
		select {
		case f.signupStarted <- struct{}{}:
		default:
		}
		<-f.signupRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	f.signups = append(f.signups, reg)
	return &models.SignupResponse{Message: "ok", UserID: "u1"}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*models.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	role := f.loginRole
	if role == "" {
		role = models.RolePatient
	}
	return &models.LoginResponse{
		AccessToken: "token",
		UserID:      "u1",
		Profile:     models.Profile{ID: "u1", UserType: role, FirstName: "Riya", LastName: "Shah", Email: email},
	}, nil
}

func (f *fakeAPI) Stats(context.Context) (models.Stats, error) {
	return models.Stats{DonorCount: 2, HospitalCount: 1}, nil
}

func (f *fakeAPI) Profiles(context.Context) ([]models.Profile, error) {
	return f.profiles, f.profileErr
}

func (f *fakeAPI) Profile(_ context.Context, id string) (*models.ProfileDetail, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return &models.ProfileDetail{Profile: models.Profile{ID: id}, SpecificData: f.detail}, nil
}

func (f *fakeAPI) ResourcesForPatient(_ context.Context, userID, _, _ string, _ int) (*models.PatientResources, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resourcesAsked = append(f.resourcesAsked, userID)
	if f.resourcesErr != nil {
		return nil, f.resourcesErr
	}
	if f.resources == nil {
		return &models.PatientResources{}, nil
	}
	return f.resources, nil
}

func boolp(b bool) *bool { return &b }

func newTestServer(t *testing.T, api API) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	srv, err := New(api, sessions)
	require.NoError(t, err)
	return srv.Router(), sessions
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func donorForm() url.Values {
	return url.Values{
		"user_type":          {"donor"},
		"email":              {"donor@example.com"},
		"password":           {"Secret123!"},
		"confirm_password":   {"Secret123!"},
		"phone":              {"+91 98000 00000"},
		"blood_type":         {"O+"},
		"last_donation":      {"2026-01-15"},
		"city":               {"Pune"},
		"state":              {"Maharashtra"},
		"contact_preference": {"both"},
		"terms":              {"true"},
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRootRedirectsToSignup(t *testing.T) {
	r, _ := newTestServer(t, &fakeAPI{})
	w := get(r, "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signup", w.Header().Get("Location"))
}

func TestSignupPageShowsRoleFields(t *testing.T) {
	r, _ := newTestServer(t, &fakeAPI{})

	w := get(r, "/signup")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/signup?role=hospital")
	assert.NotContains(t, w.Body.String(), `name="email"`)

	w = get(r, "/signup?role=donor")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="last_donation"`)
	assert.Contains(t, body, `name="contact_preference"`)
	assert.NotContains(t, body, `name="services"`)

	w = get(r, "/signup?role=hospital")
	body = w.Body.String()
	assert.Contains(t, body, `name="services"`)
	assert.Contains(t, body, `name="latitude"`)
	assert.NotContains(t, body, `name="last_donation"`)
}

func TestSignupSubmitSuccess(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newTestServer(t, api)

	w := post(r, "/signup?role=donor", donorForm())
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/verify-email?email=donor%40example.com", w.Header().Get("Location"))

	require.Len(t, api.signups, 1)
	reg, ok := api.signups[0].(*models.DonorRegistration)
	require.True(t, ok)
	assert.Equal(t, "O+", reg.BloodType)
	assert.Equal(t, "Pune", reg.City)

	w = get(r, "/verify-email?email=donor%40example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "donor@example.com")
}

func TestSignupSubmitValidationSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newTestServer(t, api)

	form := donorForm()
	form.Set("confirm_password", "different")
	form.Del("terms")
	form.Del("blood_type")
	w := post(r, "/signup?role=donor", form)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Passwords do not match")
	assert.Contains(t, body, "Please accept the terms and conditions")
	assert.Contains(t, body, `value="Pune"`, "entered values are kept")
	assert.NotContains(t, body, `value="Secret123!"`, "passwords are not echoed")
	assert.Empty(t, api.signups)
}

func TestSignupSubmitUnknownRole(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newTestServer(t, api)
	form := donorForm()
	form.Set("user_type", "nurse")
	w := post(r, "/signup", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.signups)
}

func TestSignupSubmitDuplicateEmail(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"An account with this email already exists"}`))
	}))
	defer backend.Close()

	r, _ := newTestServer(t, apiclient.New(backend.URL))

	w := post(r, "/signup?role=donor", donorForm())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "An account with this email already exists")
	assert.Contains(t, w.Body.String(), `value="donor@example.com"`)
}

func TestLoginFlow(t *testing.T) {
	api := &fakeAPI{profiles: []models.Profile{
		{ID: "d1", UserType: models.RoleDonor, FirstName: "Asha", City: "Pune", BloodType: "O+", Available: boolp(true)},
		{ID: "d2", UserType: models.RoleDonor, FirstName: "Vikram", City: "Mumbai", BloodType: "A+", Available: boolp(false)},
		{ID: "h1", UserType: models.RoleHospital, Name: "Ruby Hall", City: "Pune", ThalassemiaSpecialist: boolp(true)},
	}}
	r, sessions := newTestServer(t, api)

	w := get(r, "/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = post(r, "/login", url.Values{"email": {"riya@example.com"}, "password": {"Secret123!"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	sess, err := sessions.Init(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "token", sess.AccessToken)

	w = get(r, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Hello, Riya Shah")
	assert.Contains(t, body, "Find Donors (2)")
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "Vikram")
	assert.NotContains(t, body, "Ruby Hall")

	w = get(r, "/dashboard?tab=donors&city=pune", cookie)
	body = w.Body.String()
	assert.Contains(t, body, "Asha")
	assert.NotContains(t, body, "Vikram")
	assert.Contains(t, body, "Clear filters")

	w = get(r, "/dashboard?tab=hospitals", cookie)
	assert.Contains(t, w.Body.String(), "Ruby Hall")

	w = get(r, "/login", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = post(r, "/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	_, err = sessions.Init(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)

	w = get(r, "/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestLoginValidation(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newTestServer(t, api)
	w := post(r, "/login", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a valid email address")
	assert.Contains(t, w.Body.String(), "Password is required")
	assert.Zero(t, api.logins)
}

func TestLoginConnectivityFailure(t *testing.T) {
	api := &fakeAPI{loginErr: apiclient.ErrConnectivity}
	r, _ := newTestServer(t, api)
	w := post(r, "/login", url.Values{"email": {"riya@example.com"}, "password": {"x"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to reach the server")
	assert.Empty(t, w.Result().Cookies())
}

func TestDashboardSurvivesAPIFailure(t *testing.T) {
	api := &fakeAPI{profileErr: errors.New("boom")}
	r, _ := newTestServer(t, api)
	w := post(r, "/login", url.Values{"email": {"riya@example.com"}, "password": {"Secret123!"}})
	cookie := sessionCookie(t, w)

	w = get(r, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Could not load profiles")
	assert.Contains(t, w.Body.String(), "No profiles match these filters.")
}

func TestProfileDetail(t *testing.T) {
	api := &fakeAPI{detail: models.SpecificData{
		"services":               []any{"Transfusion", "Chelation"},
		"rating":                 4.5,
		"thalassemia_specialist": true,
		"internal":               "hidden",
	}}
	r, _ := newTestServer(t, api)
	w := post(r, "/login", url.Values{"email": {"riya@example.com"}, "password": {"Secret123!"}})
	cookie := sessionCookie(t, w)

	w = get(r, "/dashboard/profiles/h1?type=hospital", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Transfusion, Chelation")
	assert.Contains(t, body, "4.5")
	assert.Contains(t, body, "Yes")
	assert.NotContains(t, body, "hidden")

	api.detailErr = apiclient.ErrConnectivity
	w = get(r, "/dashboard/profiles/h1?type=hospital", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Details are not available right now.")
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t, &fakeAPI{})
	w := get(r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "Not provided", formatValue(nil))
	assert.Equal(t, "No", formatValue(false))
	assert.Equal(t, "12", formatValue(float64(12)))
	assert.Equal(t, "a, b", formatValue([]string{"a", "b"}))
	assert.Equal(t, "7", formatValue(7))
}

func TestSignupDoubleSubmitSendsOnce(t *testing.T) {
	api := &fakeAPI{signupStarted: make(chan struct{}, 1), signupRelease: make(chan struct{})}
	r, _ := newTestServer(t, api)
	form := donorForm()
	form.Set(FieldFormID, "form-1")

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- post(r, "/signup?role=donor", form) }()
	<-api.signupStarted

	w := post(r, "/signup?role=donor", form)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="signup-submit" type="submit" disabled`)
	assert.Contains(t, body, "already being processed")
	assert.Contains(t, body, `value="donor@example.com"`)

	close(api.signupRelease)
	w = <-first
	assert.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	api.mu.Lock()
	assert.Len(t, api.signups, 1)
	api.mu.Unlock()
}

func TestSignupPageCarriesFormID(t *testing.T) {
	r, _ := newTestServer(t, &fakeAPI{})
	w := get(r, "/signup?role=donor")
	body := w.Body.String()
	assert.Contains(t, body, `name="form_id"`)
	assert.Contains(t, body, "onsubmit=")
	assert.Contains(t, body, `name="available"`)
	assert.NotContains(t, body, `id="signup-submit" type="submit" disabled`)

	w = get(r, "/login")
	assert.Contains(t, w.Body.String(), `name="form_id"`)
	assert.Contains(t, w.Body.String(), `id="login-submit"`)
}

func TestInflightSharesFormByID(t *testing.T) {
	p := newInflight[*int]()
	builds := 0
	build := func() *int { builds++; n := builds; return &n }

	a, releaseA := p.acquire("x", build)
	b, releaseB := p.acquire("x", build)
	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)

	releaseA()
	releaseA()
	assert.Equal(t, 1, p.pending())
	releaseB()
	assert.Zero(t, p.pending())

	c, releaseC := p.acquire("x", build)
	defer releaseC()
	assert.NotSame(t, a, c)

	d, releaseD := p.acquire("", build)
	e, releaseE := p.acquire("", build)
	defer releaseD()
	defer releaseE()
	assert.NotSame(t, d, e)
	assert.Equal(t, 1, p.pending())
}

func TestSignupSwitchRoleKeepsSharedValues(t *testing.T) {
	api := &fakeAPI{}
	r, _ := newTestServer(t, api)

	w := post(r, "/signup/role", url.Values{
		"user_type":   {"patient"},
		"change_role": {"donor"},
		"form_id":     {"form-2"},
		"email":       {"asha@example.com"},
		"city":        {"Pune"},
		"first_name":  {"Asha"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `name="user_type" value="donor"`)
	assert.Contains(t, body, `value="asha@example.com"`)
	assert.Contains(t, body, `value="Pune"`)
	assert.Contains(t, body, `name="last_donation"`)
	assert.NotContains(t, body, `name="first_name"`)
	assert.NotContains(t, body, `value="Asha"`)
	assert.Contains(t, body, `value="form-2"`)
	assert.Contains(t, body, `formaction="/signup/role"`)
	assert.Empty(t, api.signups)

	w = post(r, "/signup/role", url.Values{"user_type": {"patient"}, "change_role": {"nurse"}, "city": {"Pune"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `value="Pune"`)
}

func TestDashboardMatchesForPatient(t *testing.T) {
	api := &fakeAPI{resources: &models.PatientResources{
		BloodType:           "B+",
		City:                "Pune",
		MatchedDonors:       []models.ProfileDetail{{Profile: models.Profile{ID: "d1", UserType: models.RoleDonor, FirstName: "Kiran"}}},
		SpecialistHospitals: []models.ProfileDetail{{Profile: models.Profile{ID: "h1", UserType: models.RoleHospital, Name: "Ruby Hall"}}},
	}}
	r, _ := newTestServer(t, api)
	w := post(r, "/login", url.Values{"email": {"riya@example.com"}, "password": {"Secret123!"}})
	cookie := sessionCookie(t, w)

	w = get(r, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Matched for you")
	assert.Contains(t, body, "Available donors (B+) in Pune")
	assert.Contains(t, body, "Kiran")
	assert.Contains(t, body, "Ruby Hall")
	assert.Equal(t, []string{"u1"}, api.resourcesAsked)

	api.resourcesErr = apiclient.ErrConnectivity
	w = get(r, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Could not load your matches.")
}

func TestDashboardSkipsMatchesForDonor(t *testing.T) {
	api := &fakeAPI{loginRole: models.RoleDonor}
	r, _ := newTestServer(t, api)
	w := post(r, "/login", url.Values{"email": {"ravi@example.com"}, "password": {"Secret123!"}})
	cookie := sessionCookie(t, w)

	w = get(r, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Matched for you")
	assert.Empty(t, api.resourcesAsked)
}
