package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/agroconnect/agroconnect/config"
)

const testSecret = "identity-test-secret"

func TestMain(m *testing.M) {
	// JWT_SECRET must be set before the cached config first loads.
	os.Setenv("JWT_SECRET", testSecret)
	os.Exit(m.Run())
}

func newIdentityRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Identity())
	r.GET("/whoami", func(c *gin.Context) {
		seen = FarmerID(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func signToken(t *testing.T, method jwt.SigningMethod, secret, farmerID string) string {
	t.Helper()
	claims := IdentityClaims{
		FarmerID: farmerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIdentityDefaultsWithoutToken(t *testing.T) {
	r, seen := newIdentityRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if *seen != config.Get().DefaultFarmerID {
		t.Fatalf("farmer id %q, want default %q", *seen, config.Get().DefaultFarmerID)
	}
}

func TestIdentityFromBearerToken(t *testing.T) {
	r, seen := newIdentityRouter()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, "farmer-42"))
	r.ServeHTTP(httptest.NewRecorder(), req)
	if *seen != "farmer-42" {
		t.Fatalf("farmer id %q, want farmer-42", *seen)
	}
}

func TestIdentityRejectsBadSignature(t *testing.T) {
	r, seen := newIdentityRouter()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, "wrong-secret", "farmer-42"))
	r.ServeHTTP(httptest.NewRecorder(), req)
	if *seen != config.Get().DefaultFarmerID {
		t.Fatalf("farmer id %q, want default", *seen)
	}
}

func TestIdentityRejectsExpiredToken(t *testing.T) {
	r, seen := newIdentityRouter()
	claims := IdentityClaims{
		FarmerID: "farmer-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if *seen != config.Get().DefaultFarmerID {
		t.Fatalf("farmer id %q, want default", *seen)
	}
}

func TestBearerTokenParsing(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			c.Request.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(c); got != tc.want {
			t.Errorf("header %q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}
