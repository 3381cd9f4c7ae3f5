package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blood-donation-tracker/internal/handler"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/utils"
)

const secret = "router-secret"

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer() *echo.Echo {
	e := echo.New()
	g := Guard{JWTSecret: secret, Principal: passThrough}
	RegisterRoutes(e, nil, nil)
	RegisterAuth(e, &handler.AuthHandler{}, g, passThrough)
	RegisterPublic(e, &handler.PublicHandler{}, passThrough)
	RegisterDonor(e, &handler.DonorHandler{}, g, passThrough)
	RegisterHospital(e, &handler.HospitalHandler{}, g)
	RegisterAdmin(e, &handler.AdminHandler{}, g)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/stats",
		"GET /v1/donor/dashboard",
		"PUT /v1/donor/profile",
		"GET /v1/donor/requests",
		"POST /v1/donor/requests/:id/accept",
		"GET /v1/donor/donations",
		"POST /v1/hospital/requests",
		"GET /v1/hospital/requests/:id",
		"PATCH /v1/hospital/requests/:id/status",
		"DELETE /v1/admin/users/:id",
		"GET /v1/admin/donations/export",
		"PATCH /v1/admin/donations/:id/status",
	} {
		assert.True(t, have[want], want)
	}
}

func TestGuardedGroups(t *testing.T) {
	e := newServer()
	tok, err := utils.NewAccessToken(secret, 3, model.RoleDonor, 5)
	require.NoError(t, err)

	cases := []struct {
		path   string
		auth   bool
		status int
	}{
		{"/healthz", false, http.StatusOK},
		{"/v1/donor/dashboard", false, http.StatusUnauthorized},
		{"/v1/hospital/dashboard", true, http.StatusForbidden},
		{"/v1/admin/users", true, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.auth {
			req.Header.Set("Authorization", "Bearer "+tok.Token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, tc.path)
	}
}
