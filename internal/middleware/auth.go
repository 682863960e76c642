package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"folio/internal/config"
	apperrors "folio/internal/errors"
)

const (
	// ActorKey is the gin context key holding who made the request.
	ActorKey = "actor"

	// EditorSubject is the subject of tokens issued by the editor login.
	EditorSubject = "editor"

	tokenIssuer   = "folio-api"
	roleEditor    = "editor"
	defaultExpiry = 24 * time.Hour
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

func tokenExpiry() time.Duration {
	if d := config.Get().JWTExpirationDur; d > 0 {
		return d
	}
	return defaultExpiry
}

// EditorClaims represents the claims in the JWT
type EditorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an editor access token for subject.
func GenerateAccessToken(subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tokenExpiry())
	claims := &EditorClaims{
		Role: roleEditor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(getJWTKey())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAccessToken validates tokenString and returns its claims.
func ParseAccessToken(tokenString string) (*EditorClaims, error) {
	claims := &EditorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid access token")
	}
	if claims.Role != roleEditor {
		return nil, fmt.Errorf("token does not grant editing")
	}
	return claims, nil
}

// AuthMiddleware verifies the bearer token and sets the actor in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ParseAccessToken(parts[1])
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(ActorKey, claims.Subject)
		c.Next()
	}
}

// EditPermission reports whether ledger mutations are allowed.
type EditPermission interface {
	CanEdit() bool
}

// RequireEditing rejects the request when editing is disabled.
func RequireEditing(perm EditPermission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !perm.CanEdit() {
			abortWithError(c, apperrors.ErrEditForbidden)
			return
		}
		c.Next()
	}
}
