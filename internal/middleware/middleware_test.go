package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/auth"
	"shopadmin/internal/metrics"
	"shopadmin/internal/middleware"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Principal), args.Error(1)
}

func newApp(authenticator middleware.Authenticator, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperrors.FiberErrorHandler(zap.NewNop())})
	if m != nil {
		app.Use(middleware.Metrics(m))
	}
	protected := app.Group("", middleware.AuthRequired(authenticator))
	protected.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(middleware.PrincipalFrom(c).UserID)
	})
	protected.Post("/admin", middleware.StaffRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, method, path, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	authenticator := new(MockAuthenticator)
	app := newApp(authenticator, nil)

	authenticator.On("Authenticate", "good").Return(&auth.Principal{UserID: "u1"}, nil)
	authenticator.On("Authenticate", "revoked").Return(nil, apperrors.Unauthorized("Token is revoked"))

	assert.Equal(t, http.StatusUnauthorized, request(t, app, http.MethodGet, "/me", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request(t, app, http.MethodGet, "/me", "Token good").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request(t, app, http.MethodGet, "/me", "Bearer revoked").StatusCode)
	assert.Equal(t, http.StatusOK, request(t, app, http.MethodGet, "/me", "Bearer good").StatusCode)
}

func TestStaffRequired(t *testing.T) {
	authenticator := new(MockAuthenticator)
	app := newApp(authenticator, nil)

	authenticator.On("Authenticate", "staff").Return(&auth.Principal{UserID: "s1", IsStaff: true}, nil)
	authenticator.On("Authenticate", "member").Return(&auth.Principal{UserID: "m1"}, nil)

	assert.Equal(t, http.StatusNoContent, request(t, app, http.MethodPost, "/admin", "Bearer staff").StatusCode)
	assert.Equal(t, http.StatusForbidden, request(t, app, http.MethodPost, "/admin", "Bearer member").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, request(t, app, http.MethodPost, "/admin", "").StatusCode)
}

func TestMetrics(t *testing.T) {
	authenticator := new(MockAuthenticator)
	m := metrics.New("test")
	app := newApp(authenticator, m)

	authenticator.On("Authenticate", "member").Return(&auth.Principal{UserID: "m1"}, nil)

	request(t, app, http.MethodGet, "/me", "Bearer member")
	request(t, app, http.MethodPost, "/admin", "Bearer member")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/me", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodPost, "/admin", "403")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))
}
