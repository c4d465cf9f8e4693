package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetTestCost()
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong horse", hash))
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret")
	id := uuid.New()

	token, expires, err := svc.GenerateToken(Claims{UserID: id, Email: "ana@example.com", Role: "user"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, id.String(), claims.Subject)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret")
	token, _, err := svc.GenerateToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewJWTService("other").ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	expired := NewJWTService("secret")
	expired.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = expired.ValidateToken(token)
	assert.Error(t, err, "expired")

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	svc := NewJWTService("secret")
	id := uuid.New()
	token, _, err := svc.GenerateToken(Claims{UserID: id})
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTMiddleware(svc))
	handler := func(c *gin.Context) {
		got, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, got.String())
	}
	router.GET("/me", handler)
	router.POST("/things", handler)

	tests := []struct {
		name   string
		method string
		setup  func(r *http.Request)
		want   int
	}{
		{"no credentials", http.MethodGet, func(r *http.Request) {}, http.StatusUnauthorized},
		{"bearer", http.MethodGet, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"bearer post skips csrf", http.MethodPost, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"non-bearer header", http.MethodGet, func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized},
		{"bad token", http.MethodGet, func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"cookie get", http.MethodGet, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		}, http.StatusOK},
		{"cookie post without csrf", http.MethodPost, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		}, http.StatusForbidden},
		{"cookie post with csrf", http.MethodPost, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
			r.AddCookie(&http.Cookie{Name: CSRFCookie, Value: "abc"})
			r.Header.Set(CSRFHeader, "abc")
		}, http.StatusOK},
		{"cookie post csrf mismatch", http.MethodPost, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
			r.AddCookie(&http.Cookie{Name: CSRFCookie, Value: "abc"})
			r.Header.Set(CSRFHeader, "xyz")
		}, http.StatusForbidden},
		{"cookie post csrf prefix only", http.MethodPost, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
			r.AddCookie(&http.Cookie{Name: CSRFCookie, Value: "abcdef"})
			r.Header.Set(CSRFHeader, "abc")
		}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/me"
			if tt.method == http.MethodPost {
				path = "/things"
			}
			req := httptest.NewRequest(tt.method, path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, id.String(), w.Body.String())
			}
		})
	}
}

func TestNewCSRFToken(t *testing.T) {
	a, err := NewCSRFToken()
	require.NoError(t, err)
	b, err := NewCSRFToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestCheckCSRF(t *testing.T) {
	tests := []struct {
		name    string
		cookie  string
		header  string
		wantErr string
	}{
		{"match", "tok-123", "tok-123", ""},
		{"missing cookie", "", "tok-123", "cookie"},
		{"missing header", "tok-123", "", CSRFHeader},
		{"different value", "tok-123", "tok-124", "mismatch"},
		{"different length", "tok-123", "tok-1234", "mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req := httptest.NewRequest(http.MethodPost, "/things", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}
			c.Request = req

			err := checkCSRF(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
