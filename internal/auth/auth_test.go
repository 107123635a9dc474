package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", 30)
	token, err := svc.Generate("zoom", RoleService)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "zoom", claims.Subject)
	assert.Equal(t, RoleService, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTValidateRejects(t *testing.T) {
	svc := NewJWTService("secret", 30)

	other, err := NewJWTService("other", 30).Generate("zoom", RoleService)
	require.NoError(t, err)

	expired, err := NewJWTService("secret", -1).Generate("zoom", RoleService)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleService}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": other,
		"expired":      expired,
		"alg none":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestServiceAccountVerify(t *testing.T) {
	acct, err := NewServiceAccount("zoom", "s3cret")
	require.NoError(t, err)
	assert.True(t, acct.Enabled())

	assert.NoError(t, acct.Verify("zoom", "s3cret"))
	assert.ErrorIs(t, acct.Verify("zoom", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, acct.Verify("admin", "s3cret"), ErrInvalidCredentials)

	disabled, err := NewServiceAccount("zoom", "")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	assert.ErrorIs(t, disabled.Verify("zoom", ""), ErrInvalidCredentials)
}

func newTokenRouter(t *testing.T) (*gin.Engine, *JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	acct, err := NewServiceAccount("zoom", "s3cret")
	require.NoError(t, err)
	svc := NewJWTService("secret", 30)
	r := gin.New()
	r.POST("/token", NewHandler(acct, svc, zap.NewNop()).Token)
	return r, svc
}

func postForm(r http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenHandler(t *testing.T) {
	r, svc := newTokenRouter(t)

	w := postForm(r, url.Values{"username": {"zoom"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 1800, resp.ExpiresIn)
	claims, err := svc.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "zoom", claims.Subject)
}

func TestTokenHandlerRejects(t *testing.T) {
	r, _ := newTokenRouter(t)

	tests := []struct {
		name string
		form url.Values
		code int
	}{
		{"wrong password", url.Values{"username": {"zoom"}, "password": {"nope"}}, http.StatusUnauthorized},
		{"unknown user", url.Values{"username": {"root"}, "password": {"s3cret"}}, http.StatusUnauthorized},
		{"missing password", url.Values{"username": {"zoom"}}, http.StatusBadRequest},
		{"empty form", url.Values{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(r, tt.form)
			assert.Equal(t, tt.code, w.Code)
			assert.NotContains(t, w.Body.String(), "access_token")
		})
	}
}
