/*
auth.go - Bearer-token authentication for the API

PURPOSE:
  Implements a minimal client-credentials flow: a configured client exchanges
  its id/secret for a signed JWT, then presents it as a bearer token on the
  protected endpoints.

TOKENS:
  HS256-signed JWTs carrying the client id and standard registered claims.
  Tokens expire after AuthConfig.TokenTTL (24h default). There is no refresh
  flow; clients re-exchange credentials.

ENFORCEMENT:
  RequireAuth guards the evaluation and lookup endpoints. It is a no-op when
  no signing secret is configured, so a bare deployment stays fully open.
  /health, /api/info, /api/auth/token and /metrics are never guarded.

SEE ALSO:
  - server.go: Which route groups are protected
  - config/config.go: Where the credentials come from
*/
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "compliance-engine"

// AuthConfig carries the signing secret and the one accepted client
// credential pair. An empty Secret disables authentication entirely.
type AuthConfig struct {
	Secret       string
	ClientID     string
	ClientSecret string
	TokenTTL     time.Duration
}

// Enabled reports whether bearer-token auth is enforced.
func (c AuthConfig) Enabled() bool { return c.Secret != "" }

func (c AuthConfig) ttl() time.Duration {
	if c.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return c.TokenTTL
}

// tokenClaims is the JWT payload for issued access tokens.
type tokenClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// =============================================================================
// TOKEN ENDPOINT
// =============================================================================

// IssueToken exchanges client credentials for a bearer token.
// POST /api/auth/token
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !h.Auth.Enabled() {
		writeError(w, http.StatusNotFound, "Authentication is not configured", nil)
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	idOK := subtle.ConstantTimeCompare([]byte(req.ClientID), []byte(h.Auth.ClientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(req.ClientSecret), []byte(h.Auth.ClientSecret)) == 1
	if !idOK || !secretOK {
		writeError(w, http.StatusUnauthorized, "Invalid client credentials", nil)
		return
	}

	ttl := h.Auth.ttl()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		ClientID: req.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   req.ClientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString([]byte(h.Auth.Secret))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sign token", err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// RequireAuth rejects requests without a valid bearer token. Passes every
// request through untouched when auth is disabled.
func RequireAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
				return
			}
			if _, err := parseToken(raw, cfg.Secret); err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func parseToken(raw, secret string) (*tokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
