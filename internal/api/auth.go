package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

type contextKey string

const principalKey contextKey = "principal"

var errMissingBearer = errors.New("missing bearer token")

// Claims identify the caller and the organization whose data it may touch.
type Claims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID         string
	OrganizationID string
}

// IssueToken signs an HS256 token for userID in orgID. A zero ttl means no expiry.
func IssueToken(secret []byte, userID, orgID string, ttl time.Duration, now time.Time) (string, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return "", fmt.Errorf("%w: user id %q", coreerrors.ErrInvalidID, userID)
	}

	if _, err := uuid.Parse(orgID); err != nil {
		return "", fmt.Errorf("%w: organization id %q", coreerrors.ErrInvalidID, orgID)
	}

	claims := &Claims{
		UserID:         userID,
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies tokenString and returns its claims. Both ids must be UUIDs.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", coreerrors.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, coreerrors.ErrUnauthorized
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: bad user_id claim", coreerrors.ErrUnauthorized)
	}

	if _, err := uuid.Parse(claims.OrganizationID); err != nil {
		return nil, fmt.Errorf("%w: bad organization_id claim", coreerrors.ErrUnauthorized)
	}

	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the request context.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", coreerrors.ErrUnauthorized, err))

			return
		}

		claims, err := ParseToken(s.jwtSecret, token)
		if err != nil {
			s.writeError(w, r, err)

			return
		}

		ctx := context.WithValue(r.Context(), principalKey, Principal{
			UserID:         claims.UserID,
			OrganizationID: claims.OrganizationID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom returns the caller stored by RequireAuth.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)

	return p, ok
}

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}

	return strings.TrimSpace(token), nil
}
