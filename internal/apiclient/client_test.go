package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/thalcare/internal/models"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func donor() models.Registration {
	return &models.DonorRegistration{
		Account:           models.Account{Email: "d@x.com", Password: "Password1", Phone: "1"},
		BloodType:         "O+",
		LastDonation:      "2024-01-01",
		City:              "Pune",
		State:             "MH",
		ContactPreference: "email",
	}
}

func TestSignupSendsRegistration(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/signup", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "donor", body["user_type"])
		assert.Equal(t, "O+", body["blood_type"])
		reply(w, http.StatusCreated, `{"message":"Signup successful","user_id":"u1"}`)
	})

	res, err := c.Signup(context.Background(), donor())
	require.NoError(t, err)
	assert.Equal(t, "u1", res.UserID)
}

func TestSignupConflict(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusConflict, `{"detail":"duplicate"}`)
	})
	_, err := c.Signup(context.Background(), donor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccountExists))
	assert.Equal(t, "An account with this email already exists.", UserMessage(err))
	assert.False(t, IsRetryable(err))
}

func TestValidationDetailShapes(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("shape") == "list" {
			reply(w, http.StatusUnprocessableEntity,
				`{"detail":[{"loc":["body","first_name"],"msg":"field required"},{"loc":["body","city"],"msg":"too short"}]}`)
			return
		}
		reply(w, http.StatusBadRequest, `{"detail":"Password too weak"}`)
	})

	err := c.do(context.Background(), http.MethodPost, "/signup?shape=list", "", []byte(`{}`), nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, map[string]string{"first_name": "field required", "city": "too short"}, FieldMessages(err))
	assert.Equal(t, MsgFieldErrors, UserMessage(err))

	err = c.do(context.Background(), http.MethodPost, "/signup", "", []byte(`{}`), nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Password too weak", UserMessage(err))
	assert.Empty(t, FieldMessages(err))
}

func TestServerErrorIsGeneric(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusInternalServerError, `{"detail":"stack trace here"}`)
	})
	_, err := c.Stats(context.Background())
	require.ErrorIs(t, err, ErrServer)
	assert.Equal(t, MsgServer, UserMessage(err))
	assert.False(t, IsRetryable(err))
}

func TestLoginUnauthorized(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusUnauthorized, `{"detail":"Invalid email or password"}`)
	})
	_, err := c.Login(context.Background(), "a@b.com", "nope")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", UserMessage(err))
}

func TestLoginSuccess(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)
		reply(w, http.StatusOK, `{"access_token":"tok","user_id":"u1","profile":{"id":"u1","user_type":"patient","email":"a@b.com","first_name":"Asha"}}`)
	})
	res, err := c.Login(context.Background(), "a@b.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.AccessToken)
	assert.Equal(t, models.RolePatient, res.Profile.UserType)
}

func TestConnectivityErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Profiles(context.Background())
	require.ErrorIs(t, err, ErrConnectivity)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, MsgConnectivity, UserMessage(err))
}

func TestTimeoutIsConnectivity(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(srv.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.Stats(context.Background())
	require.ErrorIs(t, err, ErrConnectivity)
	assert.True(t, IsRetryable(err))
}

func TestProfilesAndDetail(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profiles":
			reply(w, http.StatusOK, `{"profiles":[{"id":"1","user_type":"donor","email":"d@x.com","city":"Pune"}],"count":1}`)
		case "/profiles/1":
			reply(w, http.StatusOK, `{"profile":{"id":"1","user_type":"donor","email":"d@x.com"},"specific_data":{"blood_type":"O+","total_donations":3}}`)
		case "/profiles/2":
			reply(w, http.StatusOK, `{"profile":{"id":"2","user_type":"patient","email":"p@x.com"}}`)
		default:
			reply(w, http.StatusNotFound, `{"detail":"Profile not found"}`)
		}
	})
	ctx := context.Background()

	profiles, err := c.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Pune", profiles[0].City)

	detail, err := c.Profile(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "O+", detail.SpecificData["blood_type"])

	detail, err = c.Profile(ctx, "2")
	require.NoError(t, err)
	assert.NotNil(t, detail.SpecificData)

	_, err = c.Profile(ctx, "3")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Profile not found", UserMessage(err))
}

func TestMeSendsBearerToken(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		reply(w, http.StatusOK, `{"id":"u1","user_type":"doctor","email":"dr@x.com"}`)
	})
	p, err := c.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, p.UserType)
}

func TestResourcesForPatient(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resources/for-patient", r.URL.Path)
		q := r.URL.Query()
		if q.Get("user_id") != "p1" {
			reply(w, http.StatusNotFound, `{"detail":"Patient not found"}`)
			return
		}
		assert.Equal(t, "Mumbai", q.Get("city"))
		assert.Empty(t, q.Get("blood_type"))
		assert.Equal(t, "5", q.Get("limit"))
		reply(w, http.StatusOK, `{"blood_type":"O+","city":"Mumbai",
			"matched_donors":[{"profile":{"id":"d1","user_type":"donor","email":"d@x.com"},"specific_data":{"blood_type":"O+"}}],
			"specialist_hospitals":[]}`)
	})
	ctx := context.Background()

	res, err := c.ResourcesForPatient(ctx, "p1", "", "Mumbai", 5)
	require.NoError(t, err)
	assert.Equal(t, "O+", res.BloodType)
	require.Len(t, res.MatchedDonors, 1)
	assert.Equal(t, "d1", res.MatchedDonors[0].Profile.ID)
	assert.Empty(t, res.SpecialistHospitals)

	_, err = c.ResourcesForPatient(ctx, "nobody", "", "Mumbai", 5)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Patient not found", UserMessage(err))
}

func TestHospitalsByServices(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hospitals/by-services", r.URL.Path)
		assert.Equal(t, "Transfusion,HLA Typing", r.URL.Query().Get("services"))
		assert.Empty(t, r.URL.Query().Get("limit"))
		reply(w, http.StatusOK, `{"hospitals":[{"profile":{"id":"h1","user_type":"hospital","name":"Ruby Hall"},"specific_data":{"services":["Transfusion"]}}],"count":1}`)
	})
	hospitals, err := c.HospitalsByServices(context.Background(), []string{"Transfusion", "HLA Typing"}, "", 0)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "Ruby Hall", hospitals[0].Profile.Name)
}
