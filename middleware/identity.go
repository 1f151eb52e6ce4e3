package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/agroconnect/agroconnect/config"
)

// ContextFarmerIDKey is the key used to store the caller's farmer id in the
// Gin context.
const ContextFarmerIDKey = "farmer_id"

// IdentityClaims are the claims issued by the external identity provider.
type IdentityClaims struct {
	FarmerID string `json:"farmer_id"`
	jwt.RegisteredClaims
}

// Identity resolves the caller's farmer id. A valid bearer token from the
// identity provider wins; otherwise the configured default id applies, so
// every handler downstream can rely on the id being present.
func Identity() gin.HandlerFunc {
	cfg := config.Get()
	return func(ctx *gin.Context) {
		farmerID := cfg.DefaultFarmerID
		if token := bearerToken(ctx); token != "" {
			if claims, err := parseIdentityToken(token, cfg.JWTSecret); err == nil && claims.FarmerID != "" {
				farmerID = claims.FarmerID
			}
		}
		ctx.Set(ContextFarmerIDKey, farmerID)
		ctx.Next()
	}
}

// FarmerID returns the farmer id injected by Identity.
func FarmerID(ctx *gin.Context) string {
	if v, ok := ctx.Get(ContextFarmerIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return config.Get().DefaultFarmerID
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseIdentityToken(tokenStr, secret string) (*IdentityClaims, error) {
	if secret == "" {
		return nil, errors.New("identity verification not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
