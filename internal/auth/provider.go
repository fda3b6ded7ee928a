package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrRolesReadOnly is returned by providers that can't write role claims.
// Roles then have to be assigned at the identity provider itself.
var ErrRolesReadOnly = errors.New("identity provider does not support assigning roles")

// Provider is the identity verifier
type Provider interface {
	// Verify checks a bearer credential and returns its claims. Any failure
	// wraps ErrUnauthenticated.
	Verify(ctx context.Context, token string) (*Claims, error)

	// SetRole persists a role claim for the subject. Clients must refresh
	// their token to pick it up.
	SetRole(ctx context.Context, uid, role string) error
}

// TokenIssuer is implemented by providers that can mint tokens themselves
type TokenIssuer interface {
	Issue(uid, email, role string) (string, error)
}

// New builds the provider selected by auth.provider
func New(ctx context.Context) (Provider, error) {
	switch viper.GetString("auth.provider") {
	case "hmac":
		return NewHMAC(viper.GetString("auth.jwt_secret"), viper.GetDuration("auth.token_ttl")), nil
	case "jwks":
		return NewJWKS(ctx, viper.GetString("auth.jwks_url"), viper.GetString("auth.issuer"), viper.GetString("auth.audience"))
	case "firebase":
		return NewFirebase(ctx,
			viper.GetString("firebase.project_id"),
			viper.GetString("firebase.client_email"),
			viper.GetString("firebase.private_key"),
		)
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", viper.GetString("auth.provider"))
	}
}

func unauthenticated(err error) error {
	return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
}

const defaultTokenTTL = 24 * time.Hour
