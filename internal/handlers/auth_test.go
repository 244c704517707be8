package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "A",
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SignupResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "User created successfully", resp.Message)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "A", resp.User.Name)
	assert.Equal(t, "a@x.com", resp.User.Email)

	// The response must never carry the password in any form.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "p1")
}

func TestSignup_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	for name, body := range map[string]map[string]string{
		"no name":     {"email": "a@x.com", "password": "p1"},
		"no email":    {"name": "A", "password": "p1"},
		"no password": {"name": "A", "email": "a@x.com"},
		"empty":       {},
	} {
		rec := env.do(t, http.MethodPost, "/auth/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Please provide all required fields", resp.Message, name)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{"name": "A", "email": "a@x.com", "password": "p1"}
	rec := env.do(t, http.MethodPost, "/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/signup", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "User already exists", resp.Message)
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "a@x.com", resp.User.Email)

	// A session cookie is issued alongside the token.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// The returned token resolves through the guard.
	rec = env.do(t, http.MethodGet, "/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_MissingCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Please provide both email and password", resp.Message)
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "A", "a@x.com", "p1")

	unknown := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "p1",
	})
	wrongPassword := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
}

func TestGuard_RejectsAllFailureModesUniformly(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.signup(t, "A", "a@x.com", "p1")

	expired, err := issueToken(userID, []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	forged, err := issueToken(userID, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	var bodies []string
	for name, token := range map[string]string{
		"absent":  "",
		"garbage": "not-a-jwt",
		"expired": expired,
		"forged":  forged,
	} {
		rec := env.do(t, http.MethodGet, "/wellness/logs", token, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
		bodies = append(bodies, rec.Body.String())
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestGuard_AcceptsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.signup(t, "A", "a@x.com", "p1")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &me)
	assert.Equal(t, userID, me.ID)
}
