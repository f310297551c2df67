package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

const (
	CtxSessionKey  = "session"
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

// Session loads the server-side session named by the session cookie, or
// starts a fresh anonymous one. The identity is bound only when the access
// token was issued for this very session and user.
func Session(store gateway.SessionStore, jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := loadSession(c, store, logger)
		c.Set(CtxSessionKey, sess)

		if sess.UserID != "" {
			if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
				claims, err := jwt.ParseAccessToken(token)
				if err == nil && claims.SessionID == sess.ID && claims.UserID == sess.UserID {
					c.Set(CtxIdentityKey, &application.Identity{ID: sess.UserID, Username: sess.Username})
					c.Set(CtxUserIDKey, sess.UserID)
				}
			}
		}
		c.Next()
	}
}

func loadSession(c *gin.Context, store gateway.SessionStore, logger *logrus.Logger) *gateway.Session {
	sid, err := c.Cookie(helpers.SessionCookie)
	if err == nil && sid != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sess, err := store.Get(ctx, sid)
		if err == nil {
			return sess
		}
		if !errors.Is(err, gateway.ErrSessionNotFound) {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("load session failed, starting anonymous session")
		}
	}
	return &gateway.Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// SessionFrom returns the session attached by Session, or a throwaway one
// when the middleware did not run.
func SessionFrom(c *gin.Context) *gateway.Session {
	if v, ok := c.Get(CtxSessionKey); ok {
		if s, ok := v.(*gateway.Session); ok {
			return s
		}
	}
	s := &gateway.Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	c.Set(CtxSessionKey, s)
	return s
}

// IdentityFrom returns the bound identity, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *application.Identity {
	if v, ok := c.Get(CtxIdentityKey); ok {
		if id, ok := v.(*application.Identity); ok {
			return id
		}
	}
	return nil
}
