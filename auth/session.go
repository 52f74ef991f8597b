// Package auth implements the cookie gate: a shared admin password exchanged for a
// signed session token. Holders of a valid session may submit and alter matches.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"striker-stats-server/config"
	"striker-stats-server/matcherrors"
)

// Issuer is the "iss" claim of session tokens.
const Issuer = "striker-stats"

// Authenticator issues and verifies session tokens.
type Authenticator struct {
	secret        []byte
	adminPassword string
	ttl           time.Duration
	cookieName    string
	cookieSecure  bool
	jwks          keyfunc.Keyfunc
	now           func() time.Time
}

// New builds an Authenticator from cfg. Without AuthSecret a random key is generated,
// so sessions do not survive a restart. AuthJWKSURL, when set, additionally accepts
// bearer tokens signed by that key set.
func New(cfg *config.Config) (*Authenticator, error) {
	a := &Authenticator{
		secret:        []byte(cfg.AuthSecret),
		adminPassword: cfg.AdminPassword,
		ttl:           time.Duration(cfg.SessionTTLHours) * time.Hour,
		cookieName:    cfg.CookieName,
		cookieSecure:  cfg.CookieSecure,
		now:           time.Now,
	}
	if len(a.secret) == 0 {
		a.secret = make([]byte, 32)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		slog.Warn("AUTH_SECRET not set, sessions reset on restart", "tag", "auth")
	}
	if a.adminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, logins are disabled", "tag", "auth")
	}
	if cfg.AuthJWKSURL != "" {
		jwks, err := keyfunc.NewDefault([]string{cfg.AuthJWKSURL})
		if err != nil {
			return nil, fmt.Errorf("load JWKS: %w", err)
		}
		a.jwks = jwks
	}
	return a, nil
}

// CheckPassword reports whether password is the admin password. Always false when
// no admin password is configured.
func (a *Authenticator) CheckPassword(password string) bool {
	if a.adminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.adminPassword)) == 1
}

// IssueToken returns a signed session token for subject and its expiry.
func (a *Authenticator) IssueToken(subject string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken verifies a session token, falling back to the JWKS when configured,
// and returns its claims.
func (a *Authenticator) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithIssuer(Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now))
	if err != nil && a.jwks != nil {
		token, err = jwt.Parse(tokenString, a.jwks.Keyfunc,
			jwt.WithValidMethods([]string{"EdDSA", "RS256", "ES256"}),
			jwt.WithTimeFunc(a.now))
	}
	if err != nil {
		return nil, errors.Join(err, matcherrors.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", matcherrors.ErrUnauthorized)
	}
	return claims, nil
}

// Authenticate returns the claims of the request's session cookie or bearer token.
func (a *Authenticator) Authenticate(r *http.Request) (jwt.MapClaims, error) {
	var tokenString string
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		tokenString = c.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenString = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if tokenString == "" {
		return nil, matcherrors.ErrUnauthorized
	}
	return a.ValidateToken(tokenString)
}

// SessionCookie wraps a token issued by IssueToken.
func (a *Authenticator) SessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func (a *Authenticator) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SubjectFromClaims returns the subject ("sub" or "id") of claims.
func SubjectFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
