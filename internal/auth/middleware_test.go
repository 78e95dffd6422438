package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tokens map[string]*UserClaims
}

func (f fakeVerifier) VerifyToken(ctx context.Context, token string) (*UserClaims, error) {
	if c, ok := f.tokens[token]; ok {
		return c, nil
	}
	return nil, errors.New("token expired")
}

// echoUID writes the caller's uid, or "anonymous".
var echoUID = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	uid, ok := GetUserID(r.Context())
	if !ok {
		uid = "anonymous"
	}
	w.Write([]byte(uid))
})

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		expectedErr bool
		errContains string
		wantToken   string
	}{
		{name: "empty header", authHeader: "", expectedErr: true, errContains: "authorization header is required"},
		{name: "no bearer prefix", authHeader: "token123", expectedErr: true, errContains: "must be Bearer token"},
		{name: "wrong prefix", authHeader: "Basic token123", expectedErr: true, errContains: "must be Bearer token"},
		{name: "bearer only no token", authHeader: "Bearer", expectedErr: true, errContains: "must be Bearer token"},
		{name: "bearer empty token", authHeader: "Bearer ", expectedErr: true, errContains: "must be Bearer token"},
		{name: "valid bearer token", authHeader: "Bearer mytoken123", wantToken: "mytoken123"},
		{name: "bearer lowercase", authHeader: "bearer mytoken456", wantToken: "mytoken456"},
		{name: "bearer mixed case", authHeader: "BEARER mytoken789", wantToken: "mytoken789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractTokenFromHeader(tt.authHeader)
			if tt.expectedErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestMiddleware(t *testing.T) {
	verifier := fakeVerifier{tokens: map[string]*UserClaims{
		"good": {UID: "user-123", Email: "a@example.com"},
	}}
	handler := Middleware(verifier)(echoUID)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", http.MethodPost, "/plan-diet-manual", "Bearer good", http.StatusOK, "user-123"},
		{"missing header", http.MethodPost, "/plan-diet-manual", "", http.StatusUnauthorized, ""},
		{"bad token", http.MethodPost, "/plan-diet", "Bearer stale", http.StatusUnauthorized, ""},
		{"public health", http.MethodGet, "/health", "", http.StatusOK, "anonymous"},
		{"preflight", http.MethodOptions, "/plan-diet", "", http.StatusOK, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"detail"`)
			}
		})
	}
}

func TestLocalDevMiddleware(t *testing.T) {
	handler := LocalDevMiddleware()(echoUID)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/abc", nil))
	assert.Equal(t, LocalDevUser.UID, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/plans/abc", nil)
	req.Header.Set(ImpersonateHeader, "tester")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "tester", rec.Body.String())
}

func TestRequireAuth(t *testing.T) {
	_, err := RequireAuth(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := WithUserClaims(context.Background(), &UserClaims{UID: "u1"})
	claims, err := RequireAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
}

func TestClaimsFromToken(t *testing.T) {
	c := claimsFromToken("uid-1", map[string]interface{}{
		"email":          "x@example.com",
		"email_verified": true,
		"name":           "Asha",
	})
	assert.Equal(t, &UserClaims{UID: "uid-1", Email: "x@example.com", DisplayName: "Asha", Verified: true}, c)
}
