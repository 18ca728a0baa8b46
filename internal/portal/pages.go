package portal

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/apiclient"
	"github.com/harentsoaR/thalcare/internal/dashboard"
	"github.com/harentsoaR/thalcare/internal/forms"
	"github.com/harentsoaR/thalcare/internal/models"
)

// fieldChangeRole names the buttons that switch the signup form to another
// account kind.
const fieldChangeRole = "change_role"

const msgInFlight = "Your submission is already being processed."

// formValues flattens a posted form, keeping the first value of each input.
func formValues(c *gin.Context) map[string]string {
	out := map[string]string{}
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// failureStatus picks the response status of a page re-rendered after a
// failed submission.
func failureStatus(err error) int {
	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, apiclient.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apiclient.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, apiclient.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, forms.ErrSubmitInFlight):
		return http.StatusTooManyRequests
	case errors.Is(err, apiclient.ErrServer):
		return http.StatusBadGateway
	}
	return http.StatusServiceUnavailable
}

func (s *Server) signupPage(c *gin.Context) {
	role, _ := models.ParseRole(c.Query("role"))
	form := forms.NewSignupForm(s.api, role, nil)
	c.HTML(http.StatusOK, "signup.html", newSignupView(form, ""))
}

func (s *Server) signupSubmit(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Invalid form submission")
		return
	}
	values := formValues(c)
	formID := values[FieldFormID]
	delete(values, FieldFormID)
	roleName := values["user_type"]
	if roleName == "" {
		roleName = c.Query("role")
	}
	delete(values, "user_type")

	role, err := models.ParseRole(roleName)
	if err != nil {
		form := forms.NewSignupForm(s.api, "", nil)
		c.HTML(http.StatusBadRequest, "signup.html", newSignupView(form, ""))
		return
	}

	form, release := s.signups.acquire(formID, func() *forms.SignupForm {
		return forms.NewSignupForm(s.api, role, values)
	})
	defer release()
	res, err := form.Submit(c.Request.Context())
	if err != nil {
		s.log.Info("signup rejected", zap.String("role", string(role)), zap.Error(err))
		v := newSignupView(form, formID)
		if errors.Is(err, forms.ErrSubmitInFlight) {
			v.State.Message = msgInFlight
		}
		c.HTML(failureStatus(err), "signup.html", v)
		return
	}
	s.log.Info("signup accepted", zap.String("role", string(role)), zap.String("user_id", res.UserID))
	c.Redirect(http.StatusSeeOther, res.Redirect+"?email="+url.QueryEscape(values["email"]))
}

// signupSwitchRole re-renders the signup form for another account kind,
// keeping what was typed into the inputs both kinds share.
func (s *Server) signupSwitchRole(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Invalid form submission")
		return
	}
	values := formValues(c)
	formID := values[FieldFormID]
	to, err := models.ParseRole(values[fieldChangeRole])
	from, fromErr := models.ParseRole(values["user_type"])
	if fromErr != nil {
		from = to
	}
	for _, k := range []string{FieldFormID, "user_type", fieldChangeRole} {
		delete(values, k)
	}

	form := forms.NewSignupForm(s.api, from, values)
	if err != nil {
		c.HTML(http.StatusBadRequest, "signup.html", newSignupView(form, formID))
		return
	}
	form.SetRole(to)
	c.HTML(http.StatusOK, "signup.html", newSignupView(form, formID))
}

func (s *Server) verifyEmailPage(c *gin.Context) {
	c.HTML(http.StatusOK, "verify_email.html", gin.H{"Email": c.Query("email")})
}

func (s *Server) loginPage(c *gin.Context) {
	if _, err := s.currentSession(c); err == nil {
		c.Redirect(http.StatusSeeOther, forms.RedirectDashboard)
		return
	}
	c.HTML(http.StatusOK, "login.html", loginView{Email: c.Query("email"), FormID: newFormID("")})
}

func (s *Server) loginSubmit(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Invalid form submission")
		return
	}
	values := formValues(c)
	formID := values[FieldFormID]
	delete(values, FieldFormID)
	form, release := s.logins.acquire(formID, func() *forms.LoginForm {
		return forms.NewLoginForm(s.api, values)
	})
	defer release()
	res, err := form.Submit(c.Request.Context())
	if err != nil {
		v := loginView{Email: values["email"], State: form.State(), FormID: newFormID(formID)}
		if errors.Is(err, forms.ErrSubmitInFlight) {
			v.State.Message = msgInFlight
		}
		c.HTML(failureStatus(err), "login.html", v)
		return
	}

	sess, err := s.sessions.Start(c.Request.Context(), res.Login)
	if err != nil {
		s.log.Error("start session", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.html", loginView{
			Email:  values["email"],
			State:  forms.State{Status: forms.StatusError, Message: apiclient.MsgServer},
			FormID: newFormID(formID),
		})
		return
	}
	s.setSessionCookie(c, sess)
	c.Redirect(http.StatusSeeOther, res.Redirect)
}

func (s *Server) logout(c *gin.Context) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if err := s.sessions.Teardown(c.Request.Context(), id); err != nil {
			s.log.Warn("end session", zap.Error(err))
		}
	}
	s.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) dashboardPage(c *gin.Context) {
	sess := sessionFrom(c)
	d := dashboard.New(s.api, s.log)
	d.Load(c.Request.Context())
	if tab, err := models.ParseCategory(c.Query("tab")); err == nil {
		d.SetTab(tab)
	}
	d.SetCriteria(models.ParseCriteria(c.Request.URL.Query()))
	if sess.Profile.UserType == models.RolePatient {
		_ = d.LoadResources(c.Request.Context(), sess.Profile.ID)
	}

	c.HTML(http.StatusOK, "dashboard.html", newDashboardView(d.View(), sess.Profile))
}

func (s *Server) profileDetail(c *gin.Context) {
	id := c.Param("id")
	role, _ := models.ParseRole(c.Query("type"))
	d := dashboard.New(s.api, s.log)
	data, err := d.Detail(c.Request.Context(), id)
	v := detailView{ID: id, Rows: detailRows(role, data)}
	if err != nil {
		v.Error = "Details are not available right now. " + apiclient.UserMessage(err)
	}
	c.HTML(http.StatusOK, "profile_detail.html", v)
}
