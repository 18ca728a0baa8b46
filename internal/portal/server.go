// Package portal serves the ThalCare web pages: role-based signup, login
// and the dashboard. Pages are rendered on the server from embedded
// templates and every piece of data comes from the HTTP API.
package portal

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/dashboard"
	"github.com/harentsoaR/thalcare/internal/forms"
	"github.com/harentsoaR/thalcare/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SessionCookie carries the session id.
const SessionCookie = "thalcare_session"

const sessionKey = "session"

// API is the part of the HTTP API the portal uses.
type API interface {
	forms.Registrar
	forms.Authenticator
	dashboard.API
}

type Server struct {
	api           API
	sessions      *session.Manager
	log           *zap.Logger
	secureCookies bool
	templates     *template.Template

	signups *inflight[*forms.SignupForm]
	logins  *inflight[*forms.LoginForm]
}

type Option func(*Server)

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secureCookies = secure }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

func New(api API, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		api:      api,
		sessions: sessions,
		log:      zap.NewNop(),
		signups:  newInflight[*forms.SignupForm](),
		logins:   newInflight[*forms.LoginForm](),
	}
	for _, opt := range opts {
		opt(s)
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = tmpl
	return s, nil
}

// Router builds the gin engine serving every page.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.SetHTMLTemplate(s.templates)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/signup")
	})

	r.GET("/signup", s.signupPage)
	r.POST("/signup", s.signupSubmit)
	r.POST("/signup/role", s.signupSwitchRole)
	r.GET("/verify-email", s.verifyEmailPage)
	r.GET("/login", s.loginPage)
	r.POST("/login", s.loginSubmit)
	r.POST("/logout", s.logout)

	dash := r.Group("/dashboard")
	dash.Use(s.requireSession())
	{
		dash.GET("", s.dashboardPage)
		dash.GET("/profiles/:id", s.profileDetail)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

// requireSession loads the visitor's session or sends them to the login
// page.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := s.currentSession(c)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func (s *Server) currentSession(c *gin.Context) (*session.Session, error) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, session.ErrNotFound
	}
	return s.sessions.Init(c.Request.Context(), id)
}

func (s *Server) setSessionCookie(c *gin.Context, sess *session.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.ID, int(s.sessions.TTL().Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secureCookies, true)
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// Ping checks that the API answers.
func (s *Server) Ping(ctx context.Context) error {
	_, err := s.api.Stats(ctx)
	return err
}
