package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"folio/internal/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Hour})
}

func setupAuthRouter(perm EditPermission) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(), RequireEditing(perm))
	r.POST("/edit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "actor": c.GetString(ActorKey)})
	})
	return r
}

type permission bool

func (p permission) CanEdit() bool { return bool(p) }

func TestGenerateAndParseAccessToken(t *testing.T) {
	setTestConfig(t)

	token, expiresAt, err := GenerateAccessToken(EditorSubject)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Errorf("unexpected expiry in %v", until)
	}

	claims, err := ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != EditorSubject || claims.Role != roleEditor {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	setTestConfig(t)

	sign := func(claims *EditorClaims, key string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := func() *EditorClaims {
		return &EditorClaims{
			Role: roleEditor,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   EditorSubject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong_key", token: sign(valid(), "other-secret")},
		{name: "expired", token: func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign(c, "test-secret")
		}()},
		{name: "wrong_issuer", token: func() string {
			c := valid()
			c.Issuer = "someone-else"
			return sign(c, "test-secret")
		}()},
		{name: "missing_role", token: func() string {
			c := valid()
			c.Role = ""
			return sign(c, "test-secret")
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.token); err == nil {
				t.Error("expected token to be rejected")
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	setTestConfig(t)
	token, _, err := GenerateAccessToken(EditorSubject)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		perm       permission
		wantStatus int
		wantCode   string
	}{
		{name: "valid_token", header: "Bearer " + token, perm: true, wantStatus: http.StatusOK},
		{name: "missing_header", perm: true, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "bad_scheme", header: "Token " + token, perm: true, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "bad_token", header: "Bearer nope", perm: true, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "editing_disabled", header: "Bearer " + token, perm: false, wantStatus: http.StatusForbidden, wantCode: "EDIT_FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := doRequest(setupAuthRouter(tt.perm), http.MethodPost, "/edit", headers)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				assertErrorCode(t, rec, tt.wantCode)
				return
			}
			if actor, _ := parseBody(t, rec)["actor"].(string); actor != EditorSubject {
				t.Errorf("actor = %q, want %q", actor, EditorSubject)
			}
		})
	}
}
