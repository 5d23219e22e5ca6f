package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pizza-delivery-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte("test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/driver", AuthRequired(secret), RoleRequired(models.RoleDriver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	return r
}

func token(t *testing.T, key []byte, role models.UserRole) string {
	t.Helper()
	tok, err := GenerateToken(key, &models.User{ID: 7, Email: "rider@example.com", Role: role})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, []byte("other"), models.RoleDriver), http.StatusUnauthorized},
		{"wrong role", "Bearer " + token(t, secret, models.RoleCustomer), http.StatusForbidden},
		{"driver", "Bearer " + token(t, secret, models.RoleDriver), http.StatusOK},
	}
	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/driver", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func signed(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestParseToken(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	foreign := valid
	foreign.Issuer = "someone-else"
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", signed(t, jwt.SigningMethodHS256, Claims{UserID: 3, RegisteredClaims: valid}), false},
		{"expired", signed(t, jwt.SigningMethodHS256, Claims{UserID: 3, RegisteredClaims: expired}), true},
		{"other issuer", signed(t, jwt.SigningMethodHS256, Claims{UserID: 3, RegisteredClaims: foreign}), true},
		{"no expiry", signed(t, jwt.SigningMethodHS256, Claims{UserID: 3, RegisteredClaims: noExpiry}), true},
		{"hs512", signed(t, jwt.SigningMethodHS512, Claims{UserID: 3, RegisteredClaims: valid}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(secret, tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("err = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil || claims.UserID != 3 {
				t.Errorf("claims = %+v, err = %v", claims, err)
			}
		})
	}
}

func TestGeneratedTokenRoundTrip(t *testing.T) {
	claims, err := ParseToken(secret, token(t, secret, models.RoleCustomer))
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 7 || claims.Subject != "7" || claims.Role != models.RoleCustomer {
		t.Errorf("claims = %+v", claims)
	}
}
