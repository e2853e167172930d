package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

const testSecret = "test-secret"

// sequence replays draws so challenges are predictable: operand a, operand b, operator.
func sequence(values ...int) func(int) int {
	index := 0
	return func(int) int {
		value := values[index%len(values)]
		index++
		return value
	}
}

func newAuthFixture(t *testing.T) (*authService, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := newSeededDB(t)
	svc := NewAuthService(
		NewRedisCaptchaStore(client, "eduportal"),
		NewRedisSessionStore(client, "eduportal"),
		repository.NewRosterRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		AuthConfig{Secret: testSecret, SessionTTL: time.Hour, CaptchaTTL: time.Minute},
		zerolog.Nop(),
	).(*authService)

	return svc, mini
}

func TestNewChallengeStoresExpectedAnswer(t *testing.T) {
	svc, mini := newAuthFixture(t)
	svc.intn = sequence(2, 4, 0)

	challenge, err := svc.NewChallenge(context.Background())
	require.NoError(t, err)
	require.Equal(t, "3 + 5 = ?", challenge.Question)

	value, err := mini.Get("eduportal:captcha:" + challenge.ID)
	require.NoError(t, err)
	require.Equal(t, "8", value)
	require.Equal(t, time.Minute, mini.TTL("eduportal:captcha:"+challenge.ID))
}

func TestLoginSucceedsWithTrimmedAnswer(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.intn = sequence(2, 4, 1)
	ctx := context.Background()

	challenge, err := svc.NewChallenge(ctx)
	require.NoError(t, err)
	require.Equal(t, "3 - 5 = ?", challenge.Question)

	response, err := svc.Login(ctx, dto.LoginRequest{
		UserID:        "P-1001",
		Role:          "student",
		ChallengeID:   challenge.ID,
		CaptchaAnswer: "  -2 ",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Kumar", response.Identity.Name)
	require.Equal(t, "student", response.Identity.Role)
	require.Equal(t, ViewDashboard, response.DefaultView)

	token, err := jwt.Parse(response.Token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "P-1001", claims["sub"])
	require.Equal(t, "student", claims["role"])

	sid, ok := claims["sid"].(string)
	require.True(t, ok)
	identity, err := svc.Session(ctx, sid)
	require.NoError(t, err)
	require.Equal(t, "P-1001", identity.ID)

	require.NoError(t, svc.Logout(ctx, sid))
	_, err = svc.Session(ctx, sid)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginUsesRoleNameForStaffAndUnknownStudents(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.intn = sequence(0, 0, 0)
	ctx := context.Background()

	for userID, role := range map[string]string{"F-77": "faculty", "Z-1": "student"} {
		challenge, err := svc.NewChallenge(ctx)
		require.NoError(t, err)

		response, err := svc.Login(ctx, dto.LoginRequest{UserID: userID, Role: role, ChallengeID: challenge.ID, CaptchaAnswer: "2"})
		require.NoError(t, err)
		require.Equal(t, role+" User", response.Identity.Name)
	}
}

func TestLoginCaptchaMismatchIssuesFreshChallenge(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.intn = sequence(0, 0, 0)
	ctx := context.Background()

	challenge, err := svc.NewChallenge(ctx)
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{UserID: "P-1001", Role: "student", ChallengeID: challenge.ID, CaptchaAnswer: "3"})
	require.ErrorIs(t, err, ErrCaptchaMismatch)

	var captchaErr *CaptchaError
	require.True(t, errors.As(err, &captchaErr))
	require.NotEmpty(t, captchaErr.Next.ID)
	require.NotEqual(t, challenge.ID, captchaErr.Next.ID)
	require.Equal(t, "1 + 1 = ?", captchaErr.Next.Question)

	// The failed challenge was consumed and cannot be retried with the right answer.
	_, err = svc.Login(ctx, dto.LoginRequest{UserID: "P-1001", Role: "student", ChallengeID: challenge.ID, CaptchaAnswer: "2"})
	require.ErrorIs(t, err, ErrCaptchaMismatch)
}

func TestLoginRejectsExpiredChallengeAndBadInput(t *testing.T) {
	svc, mini := newAuthFixture(t)
	ctx := context.Background()

	challenge, err := svc.NewChallenge(ctx)
	require.NoError(t, err)
	mini.FastForward(2 * time.Minute)

	_, err = svc.Login(ctx, dto.LoginRequest{UserID: "P-1001", Role: "student", ChallengeID: challenge.ID, CaptchaAnswer: "0"})
	require.ErrorIs(t, err, ErrCaptchaMismatch)

	_, err = svc.Login(ctx, dto.LoginRequest{UserID: "", Role: "student", ChallengeID: "x"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.Login(ctx, dto.LoginRequest{UserID: "P-1001", Role: "guest", ChallengeID: "x"})
	require.True(t, errors.As(err, &validationErrs))
}

func TestMemoryStoresExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	captchas := NewMemoryCaptchaStore().(*memoryCaptchaStore)
	captchas.now = func() time.Time { return now }
	require.NoError(t, captchas.Save(ctx, "c1", 4, time.Minute))

	expected, ok, err := captchas.Take(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, expected)

	_, ok, err = captchas.Take(ctx, "c1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, captchas.Save(ctx, "c2", 1, time.Minute))
	now = now.Add(2 * time.Minute)
	_, ok, err = captchas.Take(ctx, "c2")
	require.NoError(t, err)
	require.False(t, ok)

	sessions := NewMemorySessionStore().(*memorySessionStore)
	sessions.now = func() time.Time { return now }
	require.NoError(t, sessions.Open(ctx, Session{ID: "s1", UserID: "P-1001", ExpiresAt: now.Add(time.Hour)}))
	_, err = sessions.Get(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = sessions.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
