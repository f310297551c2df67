package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/imagestore"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/memory"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/session"
	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
	"github.com/seronsenapati/STAYLO/pkg/response"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

type site struct {
	srv    *httptest.Server
	client *http.Client
	store  *memory.Store
}

type renderedView struct {
	View        string                `json:"view"`
	Status      int                   `json:"status"`
	Data        json.RawMessage       `json:"data"`
	Messages    []response.Flash      `json:"messages"`
	CurrentUser *response.CurrentUser `json:"currentUser"`
}

func newSite(t *testing.T) *site {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger := helpers.NewDiscardLogger()

	store := memory.NewStore()
	images, err := imagestore.NewLocal(t.TempDir())
	require.NoError(t, err)
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "staylo")
	cookies := helpers.NewCookie("", false)
	sessions := session.NewMemory(time.Hour)
	rec := metrics.New(prometheus.NewRegistry())
	events := noopEvents{}

	guard := application.NewGuard(store.Listings(), store.Reviews(), logger)
	resolver := application.NewResolver(nil, images, events, rec, logger)
	view := NewPresenter(sessions, cookies, time.Hour, logger, false)
	lh := NewListingHandler(application.NewListingService(store.Listings(), guard, resolver, events, rec, logger), view, logger)
	rh := NewReviewHandler(application.NewReviewService(store.Listings(), store.Reviews(), guard, events, rec, logger), view, logger)
	uh := NewUserHandler(application.NewUserService(store.Users(), jwt, logger), view, cookies, logger)

	r := gin.New()
	r.NoRoute(NotFound)
	g := r.Group("/")
	g.Use(middleware.Session(sessions, jwt, logger))
	g.GET("/signup", uh.SignupForm)
	g.POST("/signup", uh.Signup)
	g.GET("/login", uh.LoginForm)
	g.POST("/login", uh.Login)
	g.GET("/logout", uh.Logout)
	g.GET("/listings", lh.Index)
	g.GET("/listings/new", lh.New)
	g.POST("/listings", lh.Create)
	g.GET("/listings/:id", lh.Show)
	g.GET("/listings/:id/edit", lh.Edit)
	g.PUT("/listings/:id", lh.Update)
	g.DELETE("/listings/:id", lh.Delete)
	g.POST("/listings/:id/reviews", rh.Create)
	g.DELETE("/listings/:id/reviews/:reviewId", rh.Delete)

	srv := httptest.NewServer(middleware.MethodOverride(r))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &site{srv: srv, client: client, store: store}
}

type noopEvents struct{}

func (noopEvents) Publish(context.Context, gateway.Event) error { return nil }

func (s *site) addUser(t *testing.T, name, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{Username: name, Email: name + "@example.com", Password: hash}
	require.NoError(t, s.store.Users().Create(context.Background(), u))
	return u
}

func (s *site) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *site) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := s.client.PostForm(s.srv.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *site) postMultipart(t *testing.T, path string, fields map[string]string, file string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != "" {
		fw, err := w.CreateFormFile(listingImageField, file)
		require.NoError(t, err)
		_, err = fw.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	resp, err := s.client.Post(s.srv.URL+path, w.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *site) login(t *testing.T, name, password string) *http.Response {
	t.Helper()
	return s.postForm(t, "/login", url.Values{"username": {name}, "password": {password}})
}

func decodeView(t *testing.T, resp *http.Response) renderedView {
	t.Helper()
	var v renderedView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func sessionCookie(s *site) string {
	u, _ := url.Parse(s.srv.URL)
	for _, c := range s.client.Jar.Cookies(u) {
		if c.Name == helpers.SessionCookie {
			return c.Value
		}
	}
	return ""
}

func cabinFields() map[string]string {
	return map[string]string{
		"listing[title]":       "Quiet Cabin",
		"listing[description]": "Pine trees and a lake.",
		"listing[price]":       "120",
		"listing[location]":    "Goa",
		"listing[country]":     "India",
	}
}

func TestIndexRendersForAnonymousVisitor(t *testing.T) {
	s := newSite(t)

	resp := s.get(t, "/listings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, resp)
	assert.Equal(t, "listings/index", v.View)
	assert.Nil(t, v.CurrentUser)
	assert.NotEmpty(t, sessionCookie(s))
}

func TestProtectedPageRedirectsToLoginAndBack(t *testing.T) {
	s := newSite(t)
	s.addUser(t, "alice", "secret1")

	resp := s.get(t, "/listings/new")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	v := decodeView(t, s.get(t, "/login"))
	assert.Equal(t, "users/login", v.View)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, "error", v.Messages[0].Kind)
	assert.Equal(t, "You must be logged in to continue", v.Messages[0].Text)

	// flash messages are shown once
	assert.Empty(t, decodeView(t, s.get(t, "/login")).Messages)

	before := sessionCookie(s)
	resp = s.login(t, "alice", "secret1")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings/new", resp.Header.Get("Location"))
	assert.NotEqual(t, before, sessionCookie(s), "login must rotate the session id")

	v = decodeView(t, s.get(t, "/listings/new"))
	assert.Equal(t, "listings/new", v.View)
	require.NotNil(t, v.CurrentUser)
	assert.Equal(t, "alice", v.CurrentUser.Username)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, "Welcome back to Staylo!", v.Messages[0].Text)
}

func TestLoginWithBadPassword(t *testing.T) {
	s := newSite(t)
	s.addUser(t, "alice", "secret1")

	resp := s.login(t, "alice", "wrong-password")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	v := decodeView(t, s.get(t, "/login"))
	require.Len(t, v.Messages, 1)
	assert.Equal(t, "Invalid username or password", v.Messages[0].Text)
	assert.Nil(t, v.CurrentUser)
}

func TestSignupBindingErrorsAreFlashed(t *testing.T) {
	s := newSite(t)

	resp := s.postForm(t, "/signup", url.Values{"username": {"ab"}, "email": {"nope"}, "password": {"123"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	v := decodeView(t, s.get(t, "/signup"))
	require.Len(t, v.Messages, 1)
	assert.Contains(t, v.Messages[0].Text, "Username")
	assert.Contains(t, v.Messages[0].Text, "Email must be a valid email")
}

func TestSignupLogsInAndLogoutForgetsIdentity(t *testing.T) {
	s := newSite(t)

	resp := s.postForm(t, "/signup", url.Values{"username": {"carol"}, "email": {"carol@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))

	v := decodeView(t, s.get(t, "/listings"))
	require.NotNil(t, v.CurrentUser)
	assert.Equal(t, "carol", v.CurrentUser.Username)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, "Register Successfully. Welcome to Staylo!", v.Messages[0].Text)

	resp = s.get(t, "/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	v = decodeView(t, s.get(t, "/listings"))
	assert.Nil(t, v.CurrentUser)
	require.Len(t, v.Messages, 1)
	assert.Equal(t, "You are logged out!", v.Messages[0].Text)

	resp = s.get(t, "/listings/new")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestCreateUpdateDeleteListingThroughForms(t *testing.T) {
	s := newSite(t)
	s.addUser(t, "alice", "secret1")
	s.login(t, "alice", "secret1")

	resp := s.postMultipart(t, "/listings", cabinFields(), "cabin.jpg")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))

	items, total, err := s.store.Listings().List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	l := items[0]
	assert.Equal(t, "Quiet Cabin", l.Title)
	assert.True(t, strings.HasPrefix(l.Image.URL, application.LocalImagePrefix))
	assert.Equal(t, entity.FallbackGeometry(), l.Geometry)

	fields := cabinFields()
	fields["listing[title]"] = "Quieter Cabin"
	resp = s.postMultipart(t, "/listings/"+l.ID+"?_method=PUT", fields, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings/"+l.ID, resp.Header.Get("Location"))

	v := decodeView(t, s.get(t, "/listings/"+l.ID))
	assert.Equal(t, "listings/show", v.View)
	assert.Contains(t, string(v.Data), "Quieter Cabin")
	assert.Contains(t, string(v.Data), `"isOwner":true`)

	resp = s.postForm(t, "/listings/"+l.ID+"?_method=DELETE", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))
	_, total, err = s.store.Listings().List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateWithoutImageGoesBackToForm(t *testing.T) {
	s := newSite(t)
	s.addUser(t, "alice", "secret1")
	s.login(t, "alice", "secret1")

	resp := s.postMultipart(t, "/listings", cabinFields(), "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings/new", resp.Header.Get("Location"))

	v := decodeView(t, s.get(t, "/listings/new"))
	require.NotEmpty(t, v.Messages)
	assert.Equal(t, "Please upload an image", v.Messages[len(v.Messages)-1].Text)
}

func TestReviewLifecycleThroughForms(t *testing.T) {
	s := newSite(t)
	owner := s.addUser(t, "alice", "secret1")
	s.addUser(t, "bob", "secret1")
	l := &entity.Listing{
		Title: "Cabin", Price: 10, Location: "Goa", Country: "India",
		Geometry: entity.FallbackGeometry(), Owner: entity.UserRef{ID: owner.ID},
	}
	require.NoError(t, s.store.Listings().Create(context.Background(), l))

	s.login(t, "bob", "secret1")
	resp := s.postForm(t, "/listings/"+l.ID+"/reviews", url.Values{"review[rating]": {"4"}, "review[comment]": {"Lovely stay"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings/"+l.ID, resp.Header.Get("Location"))

	got, err := s.store.Listings().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	reviewID := got.Reviews[0]

	resp = s.postForm(t, "/listings/"+l.ID+"/reviews/"+reviewID+"?_method=DELETE", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	got, err = s.store.Listings().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Reviews)
}

func TestEditByNonOwnerIsForbidden(t *testing.T) {
	s := newSite(t)
	owner := s.addUser(t, "alice", "secret1")
	s.addUser(t, "bob", "secret1")
	l := &entity.Listing{
		Title: "Cabin", Price: 10, Location: "Goa", Country: "India",
		Geometry: entity.FallbackGeometry(), Owner: entity.UserRef{ID: owner.ID},
	}
	require.NoError(t, s.store.Listings().Create(context.Background(), l))

	s.login(t, "bob", "secret1")
	resp := s.get(t, "/listings/"+l.ID+"/edit")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/listings/"+l.ID, resp.Header.Get("Location"))
}

func TestForgedAccessTokenIsIgnored(t *testing.T) {
	s := newSite(t)
	u := s.addUser(t, "alice", "secret1")

	s.get(t, "/listings")
	forged, _, err := helpers.NewJWTManager("test-secret", time.Hour, "staylo").GenerateAccessToken(u.ID, "another-session")
	require.NoError(t, err)
	base, _ := url.Parse(s.srv.URL)
	s.client.Jar.SetCookies(base, []*http.Cookie{{Name: helpers.AccessCookie, Value: forged, Path: "/"}})

	v := decodeView(t, s.get(t, "/listings"))
	assert.Nil(t, v.CurrentUser)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	s := newSite(t)

	resp := s.get(t, "/nowhere")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	v := decodeView(t, resp)
	assert.Equal(t, "error", v.View)
	assert.Contains(t, string(v.Data), "Page Not Found")
}
