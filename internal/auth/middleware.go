package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"asr-benchmark-hub/backend/internal/datastore"
)

// IdentityResolver looks up the persisted identity behind a token subject.
// *datastore.UserStore satisfies it; tests substitute fakes.
type IdentityResolver interface {
	ByID(ctx context.Context, id string) (*datastore.User, error)
}

const identityKey = "authenticatedUser"

// CurrentUser returns the identity resolved by RequireAuth or OptionalAuth,
// if any.
func CurrentUser(c *gin.Context) (*datastore.User, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*datastore.User)
	return u, ok
}

// bearerToken extracts the credential from the Authorization header. An
// empty result means no credential was presented.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	// Accept both "Bearer <token>" and a bare token.
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(header)
}

// resolveIdentity runs the full gate: decode, purpose check, identity
// lookup, status check. It returns the resolved user or one of the auth
// sentinel errors.
func resolveIdentity(c *gin.Context, tokens *TokenService, users IdentityResolver) (*datastore.User, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims, err := tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeAccess {
		return nil, ErrWrongTokenPurpose
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	user, err := users.ByID(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, err
	}
	if user.Status != datastore.StatusActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

// RequireAuth rejects requests without a valid, active, access-purposed
// identity. Each rejection cause maps to a distinguishable error body.
func RequireAuth(tokens *TokenService, users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		user, err := resolveIdentity(c, tokens, users)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrInactiveAccount) {
				status = http.StatusForbidden
			}
			if !isAuthError(err) {
				status = http.StatusInternalServerError
				err = errors.New("failed to resolve identity")
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// OptionalAuth runs the same gate but collapses every rejection into an
// anonymous request, for endpoints that merely behave differently for
// authenticated callers.
func OptionalAuth(tokens *TokenService, users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveIdentity(c, tokens, users); err == nil {
			c.Set(identityKey, user)
		}
		c.Next()
	}
}

// roleRank orders the role hierarchy for minimum-role checks.
func roleRank(r datastore.Role) int {
	switch r {
	case datastore.RoleAdmin:
		return 2
	case datastore.RoleEditor:
		return 1
	default:
		return 0
	}
}

// RequireRole enforces a minimum role. Admin passes unconditionally — an
// explicit override, not just the top of the hierarchy. Must run after
// RequireAuth.
func RequireRole(minimum datastore.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		if user.Role == datastore.RoleAdmin {
			c.Next()
			return
		}
		if roleRank(user.Role) < roleRank(minimum) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrInsufficientPermissions.Error()})
			return
		}
		c.Next()
	}
}

func isAuthError(err error) bool {
	for _, known := range []error{
		ErrTokenExpired, ErrTokenInvalid, ErrWrongTokenPurpose,
		ErrUnknownIdentity, ErrInactiveAccount,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
