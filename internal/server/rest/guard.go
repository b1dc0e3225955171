package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/auth"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
)

// BearerAuth validates the login token sent in the Authorization header.
type BearerAuth interface {
	Authenticate(token string) (*auth.Identity, error)
}

// SessionAuth manages the cookie-backed server session. Only logout uses it.
type SessionAuth interface {
	Logout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (*models.Session, error)
}

const (
	msgTokenRequired = "Authentication token is required"
	msgTokenInvalid  = "Invalid or expired token"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFrom returns the identity stored by BearerGuard, if any.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

// BearerGuard rejects requests without a valid login token. Expired,
// malformed and forged tokens get the same response; the kind is logged.
func BearerGuard(a BearerAuth, l logging.Logger) func(http.Handler) http.Handler {
	log := l.With("module", "guard")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(bearerToken(r))
			if err != nil {
				if errors.Is(err, common.ErrMissingToken) {
					writeMessage(w, http.StatusUnauthorized, msgTokenRequired)
					return
				}
				log.Warn(r.Context(), "bearer token rejected", "kind", tokenErrorKind(err), "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken returns the second word of "Bearer <token>". Any other scheme
// counts as no token at all, so "Basic xyz" gets the token-required answer.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName)), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func tokenErrorKind(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, common.ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
