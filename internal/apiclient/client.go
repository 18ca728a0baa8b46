// Package apiclient calls the ThalCare HTTP JSON API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/models"
)

// DefaultTimeout bounds every call made by a Client.
const DefaultTimeout = 10 * time.Second

const maxBody = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Signup posts a registration to POST /signup.
func (c *Client) Signup(ctx context.Context, reg models.Registration) (*models.SignupResponse, error) {
	body, err := models.EncodeRegistration(reg)
	if err != nil {
		return nil, fmt.Errorf("encode registration: %w", err)
	}
	var out models.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	body, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var out models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	err := c.do(ctx, http.MethodGet, "/stats", "", nil, &out)
	return out, err
}

func (c *Client) DetailedStats(ctx context.Context, city, state string) (*models.DetailedStats, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if state != "" {
		q.Set("state", state)
	}
	path := "/stats/detailed"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out models.DetailedStats
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profiles returns the full candidate list from GET /profiles.
func (c *Client) Profiles(ctx context.Context) ([]models.Profile, error) {
	var out models.ProfileList
	if err := c.do(ctx, http.MethodGet, "/profiles", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Profiles, nil
}

// Profile returns the role-specific detail of one profile.
func (c *Client) Profile(ctx context.Context, id string) (*models.ProfileDetail, error) {
	var out models.ProfileDetail
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	if out.SpecificData == nil {
		out.SpecificData = models.SpecificData{}
	}
	return &out, nil
}

// ResourcesForPatient asks the server to match donors and specialist
// hospitals for a patient. Empty bloodType or city fall back to the
// patient's own profile; limit 0 takes the server default.
func (c *Client) ResourcesForPatient(ctx context.Context, userID, bloodType, city string, limit int) (*models.PatientResources, error) {
	q := url.Values{"user_id": {userID}}
	if bloodType != "" {
		q.Set("blood_type", bloodType)
	}
	if city != "" {
		q.Set("city", city)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out models.PatientResources
	if err := c.do(ctx, http.MethodGet, "/resources/for-patient?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HospitalsByServices lists hospitals offering any of services.
func (c *Client) HospitalsByServices(ctx context.Context, services []string, city string, limit int) ([]models.ProfileDetail, error) {
	q := url.Values{"services": {strings.Join(services, ",")}}
	if city != "" {
		q.Set("city", city)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out models.ServiceHospitals
	if err := c.do(ctx, http.MethodGet, "/hospitals/by-services?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Hospitals, nil
}

// Search runs the criteria on the server instead of in memory.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) ([]models.Profile, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out models.ProfileList
	if err := c.do(ctx, http.MethodPost, "/search", "", body, &out); err != nil {
		return nil, err
	}
	return out.Profiles, nil
}

// Me returns the profile of the account holding token.
func (c *Client) Me(ctx context.Context, token string) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &Error{Message: MsgConnectivity, kind: ErrConnectivity, err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: MsgConnectivity, kind: ErrConnectivity, err: err}
	}
	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: MsgServer, kind: ErrServer, err: err}
	}
	return nil
}
