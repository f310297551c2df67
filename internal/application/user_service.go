package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

const (
	msgSignupWelcome  = "Register Successfully. Welcome to Staylo!"
	msgLoginWelcome   = "Welcome back to Staylo!"
	msgLoggedOut      = "You are logged out!"
	msgBadCredentials = "Invalid username or password"
	msgUsernameTaken  = "A user with the given username or email is already registered"
	msgSignupFailed   = "Error signing up. Please try again."
	msgPasswordLong   = "Password must not exceed 72 bytes"
	defaultAfterLogin = "/listings"
)

type SignupInput struct {
	Username string `form:"username" binding:"required,handle"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,pwd"`
}

type LoginInput struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Login is the credential material the transport turns into cookies.
type Login struct {
	User        *entity.User
	AccessToken string
	ExpiresAt   time.Time
}

// UserService is the identity provider: signup, login and logout.
type UserService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, JWT: jwt, Logger: logger}
}

func (s *UserService) SignupForm() Outcome { return render("users/signup", nil) }

func (s *UserService) LoginForm() Outcome { return render("users/login", nil) }

func (s *UserService) Signup(ctx context.Context, rc *RequestContext, in SignupInput) (Outcome, *Login, error) {
	hash, err := helpers.HashPassword(in.Password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		rc.Flash(FlashError, msgPasswordLong)
		return redirectTo("/signup"), nil, apperr.Validation([]string{msgPasswordLong})
	}
	if err != nil {
		rc.Flash(FlashError, msgSignupFailed)
		return redirectTo("/signup"), nil, apperr.Wrap(apperr.Unhandled, msgSignupFailed, err)
	}
	u := &entity.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			rc.Flash(FlashError, msgUsernameTaken)
			return redirectTo("/signup"), nil, apperr.New(apperr.ValidationFailed, msgUsernameTaken)
		}
		s.Logger.WithError(err).Error("create user failed")
		rc.Flash(FlashError, msgSignupFailed)
		return redirectTo("/signup"), nil, apperr.Wrap(apperr.StoreUnavailable, msgSignupFailed, err)
	}

	login, err := s.issue(rc, u)
	if err != nil {
		rc.Flash(FlashError, msgSignupFailed)
		return redirectTo("/login"), nil, apperr.Wrap(apperr.Unhandled, msgSignupFailed, err)
	}
	rc.Flash(FlashSuccess, msgSignupWelcome)
	return redirectTo(defaultAfterLogin), login, nil
}

// Login authenticates and sends the user back to the page that required it.
func (s *UserService) Login(ctx context.Context, rc *RequestContext, in LoginInput) (Outcome, *Login, error) {
	u, err := s.Users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		s.Logger.WithError(err).Error("load user for login failed")
		rc.Flash(FlashError, msgStoreUnavailable)
		return redirectTo("/login"), nil, apperr.Wrap(apperr.StoreUnavailable, msgStoreUnavailable, err)
	}
	var hash string
	if u != nil {
		hash = u.Password
	}
	if !helpers.CompareHashAndPassword(hash, in.Password) {
		rc.Flash(FlashError, msgBadCredentials)
		return redirectTo("/login"), nil, apperr.New(apperr.Unauthenticated, msgBadCredentials)
	}

	login, err := s.issue(rc, u)
	if err != nil {
		rc.Flash(FlashError, msgStoreUnavailable)
		return redirectTo("/login"), nil, apperr.Wrap(apperr.Unhandled, msgStoreUnavailable, err)
	}
	dest := rc.RedirectAfterLogin
	if dest == "" || !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
		dest = defaultAfterLogin
	}
	rc.RedirectAfterLogin = ""
	rc.Flash(FlashSuccess, msgLoginWelcome)
	return redirectTo(dest), login, nil
}

func (s *UserService) Logout(rc *RequestContext) Outcome {
	rc.Identity = nil
	rc.Flash(FlashSuccess, msgLoggedOut)
	return redirectTo("/listings")
}

// issue rotates the session id, binds the identity and signs an access
// token for the new session.
func (s *UserService) issue(rc *RequestContext, u *entity.User) (*Login, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}
	rc.SessionID = sid
	rc.Identity = &Identity{ID: u.ID, Username: u.Username}
	return &Login{User: u, AccessToken: token, ExpiresAt: exp}, nil
}
