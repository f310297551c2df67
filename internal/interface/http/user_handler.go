package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	View    *Presenter
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewUserHandler(svc *application.UserService, view *Presenter, cookies *helpers.Manager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, View: view, Cookies: cookies, Logger: logger}
}

func (h *UserHandler) SignupForm(c *gin.Context) {
	h.View.Respond(c, h.View.Context(c), h.Svc.SignupForm(), nil)
}

func (h *UserHandler) Signup(c *gin.Context) {
	rc := h.View.Context(c)
	var in application.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		h.rejectForm(c, rc, "/signup", err)
		return
	}
	out, login, err := h.Svc.Signup(c.Request.Context(), rc, in)
	if login != nil {
		h.Cookies.SetAccess(c, login.AccessToken, login.ExpiresAt)
	}
	h.View.Respond(c, rc, out, err)
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	h.View.Respond(c, h.View.Context(c), h.Svc.LoginForm(), nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	rc := h.View.Context(c)
	var in application.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		h.rejectForm(c, rc, "/login", err)
		return
	}
	out, login, err := h.Svc.Login(c.Request.Context(), rc, in)
	if login != nil {
		h.Cookies.SetAccess(c, login.AccessToken, login.ExpiresAt)
	}
	h.View.Respond(c, rc, out, err)
}

func (h *UserHandler) Logout(c *gin.Context) {
	rc := h.View.Context(c)
	h.Cookies.ClearAccess(c)
	h.View.Respond(c, rc, h.Svc.Logout(rc), nil)
}

func (h *UserHandler) rejectForm(c *gin.Context, rc *application.RequestContext, back string, err error) {
	msgs := validation.ToMessages(err)
	h.Logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"fields":     validation.ToDetails(err),
	}).Debug("user form rejected")
	rc.Flash(application.FlashError, strings.Join(msgs, ", "))
	h.View.Respond(c, rc, application.Outcome{Redirect: back, Status: http.StatusFound}, apperr.Validation(msgs))
}
