package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACIssueAndVerify(t *testing.T) {
	p := NewHMAC("secret", time.Hour)

	token, err := p.Issue("user-1", "u@example.com", "creator")
	require.NoError(t, err)

	c, err := p.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "u@example.com", c.Email)
	assert.Equal(t, "creator", c.Role())
	assert.NoError(t, RequireCreator(c))
}

func TestHMACVerifyRejects(t *testing.T) {
	p := NewHMAC("secret", time.Hour)
	ctx := context.Background()

	other, err := NewHMAC("other", time.Hour).Issue("user-1", "", "creator")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": other,
		"expired":      expired,
		"no expiry":    noExp,
		"no subject":   noSub,
		"wrong alg":    hs512,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Verify(ctx, token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestHMACIssueRequiresSubject(t *testing.T) {
	_, err := NewHMAC("secret", 0).Issue("", "", "creator")
	assert.Error(t, err)
}

func TestHMACSetRoleIsNoop(t *testing.T) {
	var p Provider = NewHMAC("secret", time.Hour)
	assert.NoError(t, p.SetRole(context.Background(), "user-1", "creator"))

	_, ok := p.(TokenIssuer)
	assert.True(t, ok)
}
