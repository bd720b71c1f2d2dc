package helpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/infrastructure/httpserver/helpers"
)

func TestClientIdentity(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"forwarded empty falls through", map[string]string{"X-Forwarded-For": " ,x", "X-Real-IP": "198.51.100.4"}, "", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"unknown", nil, "", helpers.UnknownClient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, helpers.ClientIdentity(req))
		})
	}
}

func TestGetJWTTokenFromContext(t *testing.T) {
	e := echo.New()
	check := func(header string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		_, err := helpers.GetJWTTokenFromContext(e.NewContext(req, httptest.NewRecorder()))
		return err
	}
	for _, h := range []string{"", "Basic abc", "Bearer  "} {
		err := check(h)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he, h)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	}
	assert.NoError(t, check("Bearer abc.def"))
}

func TestUserContext(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := helpers.GetUserIDFromContext(c)
	require.Error(t, err)

	id := uuid.New()
	helpers.SetUserID(c, id)
	helpers.SetUserEmail(c, "a@example.com")
	got, err := helpers.GetUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	email, err := helpers.GetUserEmailFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", email)
}
