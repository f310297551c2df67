package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/response"
)

// Presenter bridges gin and the orchestrators: it builds the RequestContext
// from the loaded session and writes Outcomes back as redirects or views,
// moving flash messages through the session.
type Presenter struct {
	Sessions   gateway.SessionStore
	Cookies    *helpers.Manager
	SessionTTL time.Duration
	Logger     *logrus.Logger
	Production bool
}

func NewPresenter(sessions gateway.SessionStore, cookies *helpers.Manager, ttl time.Duration, logger *logrus.Logger, production bool) *Presenter {
	return &Presenter{Sessions: sessions, Cookies: cookies, SessionTTL: ttl, Logger: logger, Production: production}
}

func (p *Presenter) Context(c *gin.Context) *application.RequestContext {
	sess := middleware.SessionFrom(c)
	rc := application.NewRequestContext(middleware.IdentityFrom(c), c.Request.URL.RequestURI())
	rc.SessionID = sess.ID
	rc.RedirectAfterLogin = sess.RedirectURL
	return rc
}

// Respond writes the outcome. An outcome without redirect or view means the
// orchestrator could not produce a page, so the error page is rendered.
func (p *Presenter) Respond(c *gin.Context, rc *application.RequestContext, out application.Outcome, err error) {
	if err != nil {
		p.logOutcome(c, err)
	}
	sess := p.sync(c, rc)

	switch {
	case out.IsRedirect():
		sess.Flash = append(sess.Flash, toFlash(rc.Messages())...)
		p.save(c, sess)
		c.Redirect(http.StatusFound, out.Redirect)
	case out.View != "":
		msgs := append(sess.Flash, toFlash(rc.Messages())...)
		sess.Flash = nil
		p.save(c, sess)
		response.Render(c, out.Status, out.View, out.Data, toResponse(msgs), currentUser(rc))
	default:
		sess.Flash = append(sess.Flash, toFlash(rc.Messages())...)
		p.save(c, sess)
		kind := apperr.KindOf(err)
		msg := "Something went wrong"
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Msg != "" {
			msg = ae.Msg
		}
		if p.Production && kind == apperr.Unhandled {
			msg = "Internal server error"
		}
		response.ErrorPage(c, kind.Status(), msg)
	}
}

// sync copies identity, session id and post-login redirect from rc into the session.
func (p *Presenter) sync(c *gin.Context, rc *application.RequestContext) *gateway.Session {
	sess := middleware.SessionFrom(c)
	if rc.SessionID != "" && rc.SessionID != sess.ID {
		if err := p.Sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			helpers.LogWarn(p.Logger, "delete rotated session failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		}
		sess.ID = rc.SessionID
	}
	sess.RedirectURL = rc.RedirectAfterLogin
	if rc.Identity != nil {
		sess.UserID, sess.Username = rc.Identity.ID, rc.Identity.Username
	} else {
		sess.UserID, sess.Username = "", ""
	}
	return sess
}

func (p *Presenter) save(c *gin.Context, sess *gateway.Session) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := p.Sessions.Save(ctx, sess); err != nil {
		helpers.LogWarn(p.Logger, "save session failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
	}
	p.Cookies.SetSession(c, sess.ID, time.Now().Add(p.SessionTTL))
}

func (p *Presenter) logOutcome(c *gin.Context, err error) {
	fields := logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"kind":       apperr.KindOf(err).String(),
	}
	switch apperr.KindOf(err) {
	case apperr.StoreUnavailable, apperr.Unhandled:
		helpers.LogError(p.Logger, "request failed", err, fields)
	default:
		p.Logger.WithFields(fields).WithError(err).Debug("request rejected")
	}
}

func toFlash(msgs []application.Message) []gateway.Flash {
	out := make([]gateway.Flash, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, gateway.Flash{Kind: string(m.Kind), Text: m.Text})
	}
	return out
}

func toResponse(msgs []gateway.Flash) []response.Flash {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]response.Flash, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, response.Flash{Kind: m.Kind, Text: m.Text})
	}
	return out
}

func currentUser(rc *application.RequestContext) *response.CurrentUser {
	if rc.Identity == nil {
		return nil
	}
	return &response.CurrentUser{ID: rc.Identity.ID, Username: rc.Identity.Username}
}

