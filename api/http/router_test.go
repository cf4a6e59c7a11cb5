package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpapi "github.com/artem13815/meetups/api/http"
	"github.com/artem13815/meetups/api/http/handlers"
	"github.com/artem13815/meetups/api/http/middleware"
	"github.com/artem13815/meetups/pkg/auth"
	"github.com/artem13815/meetups/pkg/health"
	"github.com/artem13815/meetups/pkg/logging"
	"github.com/artem13815/meetups/pkg/meetup"
	"github.com/artem13815/meetups/pkg/profile"
	"github.com/artem13815/meetups/pkg/registration"
	"github.com/artem13815/meetups/pkg/repository/memory"
	"github.com/artem13815/meetups/pkg/security/jwt"
)

const secret = "test-secret"

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	logger := logging.Discard()
	st := memory.NewStore()
	tokens, err := jwt.NewTokenService(secret, "meetups-api", time.Hour)
	require.NoError(t, err)

	authUC := auth.NewAuthService(st.Users(), auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	app := httpapi.NewApp(logger, nil)
	httpapi.Register(app, httpapi.Handlers{
		Auth:          handlers.NewAuthHandler(authUC, logger),
		Health:        handlers.NewHealthHandler(health.NewService()),
		Meetups:       handlers.NewMeetupHandler(meetup.NewService(st.Meetups()), logger),
		Registrations: handlers.NewRegistrationHandler(registration.NewService(st.Registrations()), logger),
		Profile:       handlers.NewProfileHandler(profile.NewService(st.Users(), st.Meetups()), logger),
	}, jwt.NewAuthMiddleware(tokens, jwt.WithLogger(logger)), middleware.RateLimit(rateLimit, nil))
	return &testServer{app: app, store: st}
}

type response struct {
	code int
	raw  []byte
}

func (r response) object(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.raw, &m), string(r.raw))
	return m
}

func (r response) list(t *testing.T) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(r.raw, &l), string(r.raw))
	return l
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{code: resp.StatusCode, raw: raw}
}

func (s *testServer) signup(t *testing.T, email, name string) (token string, id string) {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": name,
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	body := res.object(t)
	return body["token"].(string), body["id"].(string)
}

func (s *testServer) createMeetup(t *testing.T, token string, capacity int) string {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/meetups", token, map[string]any{
		"title":        "Go night",
		"description":  "talks and pizza",
		"date_time":    time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"max_capacity": capacity,
		"category":     "Technology",
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	return res.object(t)["id"].(string)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	s := newServer(t, 0)

	res := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "password123", "name": "Alice",
	})
	require.Equal(t, http.StatusCreated, res.code)
	created := res.object(t)
	assert.Equal(t, "a@x.com", created["email"])
	assert.Equal(t, "Alice", created["name"])
	assert.NotEmpty(t, created["token"])
	assert.NotEmpty(t, created["created_at"])
	assert.NotContains(t, string(res.raw), "password")

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "password123"})
	require.Equal(t, http.StatusOK, res.code)
	login := res.object(t)
	assert.NotEmpty(t, login["token"])
	assert.Equal(t, "Alice", login["user"].(map[string]any)["name"])
	assert.NotContains(t, string(res.raw), "password_hash")

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "Invalid credentials", res.object(t)["error"])

	res = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": " A@X.com ", "password": "password123", "name": "Alice again",
	})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "Email already registered", res.object(t)["error"])

	res = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "b@x.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.NotEmpty(t, res.object(t)["error"])
}

func TestMeetupFullScenario(t *testing.T) {
	s := newServer(t, 0)
	alice, _ := s.signup(t, "alice@x.com", "Alice")
	bob, _ := s.signup(t, "bob@x.com", "Bob")
	id := s.createMeetup(t, alice, 1)

	res := s.do(t, http.MethodPost, "/api/meetups/"+id+"/register", alice, nil)
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	reg := res.object(t)
	assert.Equal(t, "Alice", reg["name"])
	assert.Equal(t, "alice@x.com", reg["email"])

	res = s.do(t, http.MethodPost, "/api/meetups/"+id+"/register", bob, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Meetup is full", res.object(t)["error"])
}

func TestDuplicateRegistration(t *testing.T) {
	s := newServer(t, 0)
	alice, _ := s.signup(t, "alice@x.com", "Alice")
	id := s.createMeetup(t, alice, 5)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/meetups/"+id+"/register", alice, nil).code)
	res := s.do(t, http.MethodPost, "/api/meetups/"+id+"/register", alice, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Already registered for this meetup", res.object(t)["error"])

	res = s.do(t, http.MethodGet, "/api/meetups/"+id, "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.EqualValues(t, 1, res.object(t)["attendees"])
}

func TestWithdrawAndRegisterAgain(t *testing.T) {
	s := newServer(t, 0)
	alice, aliceID := s.signup(t, "alice@x.com", "Alice")
	id := s.createMeetup(t, alice, 1)
	path := "/api/meetups/" + id + "/register"

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, path, alice, nil).code)

	res := s.do(t, http.MethodGet, "/api/meetups/"+id, "", nil)
	require.Equal(t, http.StatusOK, res.code)
	participants := res.object(t)["participants"].([]any)
	require.Len(t, participants, 1)
	assert.Equal(t, aliceID, participants[0].(map[string]any)["id"])

	res = s.do(t, http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, aliceID, res.object(t)["user_id"])

	res = s.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "Not registered for this meetup", res.object(t)["error"])

	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, path, alice, nil).code)
}

func TestRegisterForPastMeetup(t *testing.T) {
	s := newServer(t, 0)
	alice, aliceID := s.signup(t, "alice@x.com", "Alice")
	past := meetup.Meetup{
		ID:          uuid.New(),
		Title:       "Yesterday's talk",
		DateTime:    time.Now().Add(-24 * time.Hour),
		Location:    "Online",
		MaxCapacity: 100,
		Category:    meetup.CategoryTechnology,
		HostID:      uuid.MustParse(aliceID),
	}
	require.NoError(t, s.store.Meetups().Create(context.Background(), past))

	res := s.do(t, http.MethodPost, "/api/meetups/"+past.ID.String()+"/register", alice, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Registration is closed for past meetups", res.object(t)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t, 0)
	id := uuid.NewString()

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/meetups"},
		{http.MethodPut, "/api/meetups/" + id},
		{http.MethodDelete, "/api/meetups/" + id},
		{http.MethodPost, "/api/meetups/" + id + "/register"},
		{http.MethodDelete, "/api/meetups/" + id + "/register"},
		{http.MethodGet, "/api/profile"},
	}
	other, err := jwt.NewTokenService("some-other-secret", "meetups-api", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(uuid.New(), jwt.Display{}, time.Hour)
	require.NoError(t, err)

	for _, r := range routes {
		res := s.do(t, r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.code, r.path)
		assert.Equal(t, "Missing token", res.object(t)["error"], r.path)

		res = s.do(t, r.method, r.path, foreign, nil)
		assert.Equal(t, http.StatusUnauthorized, res.code, r.path)
		assert.Equal(t, "Invalid token", res.object(t)["error"], r.path)
	}
}

func TestMeetupValidationAndLookup(t *testing.T) {
	s := newServer(t, 0)
	alice, _ := s.signup(t, "alice@x.com", "Alice")

	res := s.do(t, http.MethodPost, "/api/meetups", alice, map[string]any{
		"title": "Cooking", "date_time": time.Now().Add(time.Hour).Format(time.RFC3339),
		"max_capacity": 3, "category": "Sports",
	})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Contains(t, res.object(t)["error"], "category")

	res = s.do(t, http.MethodPost, "/api/meetups", alice, map[string]any{
		"title": "Cooking", "date_time": time.Now().Add(-time.Hour).Format(time.RFC3339),
		"max_capacity": 3, "category": "Food",
	})
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = s.do(t, http.MethodGet, "/api/meetups/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "Meetup not found", res.object(t)["error"])

	res = s.do(t, http.MethodGet, "/api/meetups/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = s.do(t, http.MethodPost, "/api/meetups/"+uuid.NewString()+"/register", alice, nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "Meetup not found", res.object(t)["error"])
}

func TestListMeetups(t *testing.T) {
	s := newServer(t, 0)
	res := s.do(t, http.MethodGet, "/api/meetups", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "[]", string(res.raw))

	alice, _ := s.signup(t, "alice@x.com", "Alice")
	s.createMeetup(t, alice, 3)

	res = s.do(t, http.MethodGet, "/api/meetups?q=go&category=tech", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	list := res.list(t)
	require.Len(t, list, 1)
	assert.Equal(t, "Go night", list[0]["title"])
	assert.EqualValues(t, 0, list[0]["attendees"])

	res = s.do(t, http.MethodGet, "/api/meetups?category=Sports", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
}

func TestHostOnlyUpdateAndDelete(t *testing.T) {
	s := newServer(t, 0)
	alice, _ := s.signup(t, "alice@x.com", "Alice")
	bob, _ := s.signup(t, "bob@x.com", "Bob")
	id := s.createMeetup(t, alice, 3)

	edit := map[string]any{
		"title": "Go night v2", "date_time": time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"max_capacity": 10, "category": "Technology", "location": "Stockholm HQ",
	}
	res := s.do(t, http.MethodPut, "/api/meetups/"+id, bob, edit)
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/meetups/"+id, bob, nil).code)

	res = s.do(t, http.MethodPut, "/api/meetups/"+id, alice, edit)
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	assert.Equal(t, "Go night v2", res.object(t)["title"])

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/meetups/"+id, alice, nil).code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/meetups/"+id, "", nil).code)
}

func TestProfile(t *testing.T) {
	s := newServer(t, 0)
	alice, _ := s.signup(t, "alice@x.com", "Alice")
	bob, _ := s.signup(t, "bob@x.com", "Bob")
	id := s.createMeetup(t, alice, 3)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/meetups/"+id+"/register", bob, nil).code)

	res := s.do(t, http.MethodGet, "/api/profile", alice, nil)
	require.Equal(t, http.StatusOK, res.code)
	p := res.object(t)
	assert.Equal(t, "Alice", p["user"].(map[string]any)["name"])
	assert.Len(t, p["createdMeetups"], 1)
	assert.Len(t, p["attendingMeetups"], 0)
	assert.NotContains(t, string(res.raw), "password")

	res = s.do(t, http.MethodGet, "/api/profile", bob, nil)
	require.Equal(t, http.StatusOK, res.code)
	p = res.object(t)
	assert.Len(t, p["createdMeetups"], 0)
	assert.Len(t, p["attendingMeetups"], 1)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newServer(t, 0)
	res := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "ok", res.object(t)["status"])

	res = s.do(t, http.MethodGet, "/api/ready", "", nil)
	assert.Equal(t, http.StatusOK, res.code)

	res = s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.NotEmpty(t, res.object(t)["error"])
}

func TestAuthRateLimit(t *testing.T) {
	s := newServer(t, 2)
	body := map[string]string{"email": "nobody@x.com", "password": "password123"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/login", "", body).code)
	}
	res := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, res.code)
	assert.Equal(t, "Too many requests", res.object(t)["error"])

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/meetups", "", nil).code)
}
