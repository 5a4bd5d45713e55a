package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the payload of the session tokens the auth service
// issues. Only the volunteer email matters to this API.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier validates session bearer tokens and extracts the requester
// identity. Token issuance and delivery live in the auth service.
type TokenVerifier struct {
	signingKey []byte
}

func NewTokenVerifier(signingKey string) *TokenVerifier {
	return &TokenVerifier{signingKey: []byte(signingKey)}
}

var errInvalidToken = errors.New("invalid or expired session token")

// VerifyToken returns the volunteer email carried by a valid token.
func (v *TokenVerifier) VerifyToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", errInvalidToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Email == "" {
		return "", errInvalidToken
	}
	return strings.ToLower(claims.Email), nil
}

type identityKey struct{}

// RequireIdentity rejects requests without a valid bearer token and stores
// the requester email on the context for handlers downstream.
func (v *TokenVerifier) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := v.identityFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeInvalidSession, errInvalidToken.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, email)))
	})
}

// OptionalIdentity attaches the requester email when a valid token is
// present and otherwise lets the request through anonymously.
func (v *TokenVerifier) OptionalIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if email, err := v.identityFromRequest(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), identityKey{}, email))
		}
		next.ServeHTTP(w, r)
	})
}

func (v *TokenVerifier) identityFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errInvalidToken
	}
	return v.VerifyToken(token)
}

// identityFrom returns the requester email placed on the context by the
// identity middleware, or "" when the request was anonymous.
func identityFrom(ctx context.Context) string {
	email, _ := ctx.Value(identityKey{}).(string)
	return email
}
