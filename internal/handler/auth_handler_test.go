package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/dto"
)

func solve(t *testing.T, question string) string {
	t.Helper()

	var a, b int
	var op string
	parts := strings.Fields(question)
	require.Len(t, parts, 5)
	a, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	op = parts[1]
	b, err = strconv.Atoi(parts[2])
	require.NoError(t, err)

	if op == "-" {
		return strconv.Itoa(a - b)
	}
	return strconv.Itoa(a + b)
}

func fetchChallenge(t *testing.T, app testApp) dto.CaptchaChallengeResponse {
	t.Helper()

	status, response := app.do(t, http.MethodGet, "/api/v1/auth/captcha", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var challenge dto.CaptchaChallengeResponse
	decodeData(t, response, &challenge)
	require.NotEmpty(t, challenge.ChallengeID)
	return challenge
}

func bearer(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLoginLogoutFlow(t *testing.T) {
	app := newTestApp(t, appOptions{realAuth: true})

	challenge := fetchChallenge(t, app)
	status, response := app.do(t, http.MethodPost, "/api/v1/auth/login", nil, dto.LoginRequest{
		UserID:        "P-1001",
		Role:          "Student",
		ChallengeID:   challenge.ChallengeID,
		CaptchaAnswer: " " + solve(t, challenge.Question) + " ",
	})
	require.Equal(t, http.StatusOK, status, response.Message)

	var login dto.LoginResponse
	decodeData(t, response, &login)
	require.NotEmpty(t, login.Token)
	require.Equal(t, "Alice Kumar", login.Identity.Name)
	require.Equal(t, "dashboard", login.DefaultView)

	status, response = app.send(t, bearer(http.MethodGet, "/api/v1/me", login.Token))
	require.Equal(t, http.StatusOK, status)
	var identity dto.IdentityResponse
	decodeData(t, response, &identity)
	require.Equal(t, "P-1001", identity.ID)
	require.Equal(t, "student", identity.Role)

	status, response = app.send(t, bearer(http.MethodPost, "/api/v1/auth/logout", login.Token))
	require.Equal(t, http.StatusOK, status)
	var logout dto.LogoutResponse
	decodeData(t, response, &logout)
	require.Equal(t, "dashboard", logout.DefaultView)

	status, _ = app.send(t, bearer(http.MethodGet, "/api/v1/me", login.Token))
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginWrongAnswerReturnsFreshChallenge(t *testing.T) {
	app := newTestApp(t, appOptions{realAuth: true})

	challenge := fetchChallenge(t, app)
	status, response := app.do(t, http.MethodPost, "/api/v1/auth/login", nil, dto.LoginRequest{
		UserID:        "F-01",
		Role:          "faculty",
		ChallengeID:   challenge.ChallengeID,
		CaptchaAnswer: "not a number",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, response.Success)

	var next dto.CaptchaChallengeResponse
	decodeData(t, response, &next)
	require.NotEmpty(t, next.ChallengeID)
	require.NotEqual(t, challenge.ChallengeID, next.ChallengeID)

	status, response = app.do(t, http.MethodPost, "/api/v1/auth/login", nil, dto.LoginRequest{
		UserID:        "F-01",
		Role:          "faculty",
		ChallengeID:   next.ChallengeID,
		CaptchaAnswer: solve(t, next.Question),
	})
	require.Equal(t, http.StatusOK, status, response.Message)

	var login dto.LoginResponse
	decodeData(t, response, &login)
	require.Equal(t, "faculty User", login.Identity.Name)
}

func TestLoginValidation(t *testing.T) {
	app := newTestApp(t, appOptions{realAuth: true})

	status, _ := app.do(t, http.MethodPost, "/api/v1/auth/login", nil, dto.LoginRequest{Role: "student", ChallengeID: "x"})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodPost, "/api/v1/auth/login", nil, dto.LoginRequest{UserID: "X", Role: "janitor", ChallengeID: "x"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, appOptions{realAuth: true})

	status, _ := app.do(t, http.MethodGet, "/api/v1/navigation", nil, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.send(t, bearer(http.MethodGet, "/api/v1/navigation", "forged"))
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, response := app.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, response.Success)
	require.Contains(t, string(response.Data), `"status":"ok"`)
}
