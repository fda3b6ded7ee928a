// Package auth verifies bearer credentials and gates requests on the role
// carried by the verified claims
package auth

import (
	"errors"

	"videoshare/video-api/internal/model"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Claims is the verified identity behind a request
type Claims struct {
	Subject string
	Email   string
	Name    string
	Raw     map[string]any
}

// Role returns the role claim. Providers put custom claims either at the top
// level or under a nested "claims" object, both are accepted.
func (c *Claims) Role() string {
	if c == nil {
		return ""
	}

	return RoleOf(c.Raw)
}

func RoleOf(raw map[string]any) string {
	if r, ok := raw["role"].(string); ok && r != "" {
		return r
	}

	if nested, ok := raw["claims"].(map[string]any); ok {
		if r, ok := nested["role"].(string); ok {
			return r
		}
	}

	return ""
}

// RequireRole is the role gate. It never touches anything but the claims.
func RequireRole(c *Claims, role string) error {
	if c == nil || c.Subject == "" {
		return ErrUnauthenticated
	}

	if c.Role() != role {
		return ErrForbidden
	}

	return nil
}

func RequireCreator(c *Claims) error {
	return RequireRole(c, model.RoleCreator)
}

func claimsFromMap(raw map[string]any) (*Claims, error) {
	c := &Claims{Raw: raw}

	for _, key := range []string{"sub", "uid", "user_id"} {
		if v, ok := raw[key].(string); ok && v != "" {
			c.Subject = v
			break
		}
	}

	if c.Subject == "" {
		return nil, errors.Join(ErrUnauthenticated, errors.New("token has no subject"))
	}

	c.Email, _ = raw["email"].(string)
	c.Name, _ = raw["name"].(string)

	return c, nil
}
