package query

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/dto"
	"github.com/domalab/cgtrace/daemon/logger"
)

// viewerClaims is this surface's JWT payload — trimmed from the teacher's
// Claims (which also carried UserID/Username/Role for its admin/operator
// roles) down to the one role this read-only surface ever grants.
type viewerClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// authenticator validates bearer tokens (JWT or static API key) against
// the query surface's single "viewer" role; there is no admin/operator
// tier here since nothing this surface exposes is mutating.
type authenticator struct {
	config    domain.AuthConfig
	jwtSecret []byte
}

func newAuthenticator(config domain.AuthConfig) *authenticator {
	a := &authenticator{config: config}
	if config.JWTSecret != "" {
		a.jwtSecret = []byte(config.JWTSecret)
	} else {
		a.jwtSecret = make([]byte, 32)
		if _, err := rand.Read(a.jwtSecret); err != nil {
			logger.Warn("failed to generate random JWT secret, falling back to static placeholder: %v", err)
		}
	}
	return a
}

// GenerateAPIKey returns a fresh 32-byte hex-encoded key, the same shape
// the teacher's auth.go uses, for the `config generate` CLI subcommand.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (a *authenticator) validateAPIKey(provided string) error {
	if a.config.APIKey == "" {
		return errors.New("no API key configured")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(a.config.APIKey)) != 1 {
		return errors.New("invalid API key")
	}
	return nil
}

func (a *authenticator) validateJWT(tokenString string) (*viewerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &viewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*viewerClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// authMiddleware enforces bearer auth when enabled: Authorization: Bearer
// is tried as a JWT first, then as a static API key; X-API-Key is the
// header fallback, matching the teacher's auth.go precedence.
func (s *Service) authMiddleware(next http.Handler) http.Handler {
	if !s.config.Auth.Enabled {
		return next
	}
	authn := newAuthenticator(s.config.Auth)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var subject string

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			if claims, err := authn.validateJWT(token); err == nil {
				subject = claims.Subject
			} else if err := authn.validateAPIKey(token); err == nil {
				subject = "api-key"
			}
		} else if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
			if err := authn.validateAPIKey(apiKey); err == nil {
				subject = "api-key"
			}
		}

		if subject == "" {
			s.writeAPIError(w, dto.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
