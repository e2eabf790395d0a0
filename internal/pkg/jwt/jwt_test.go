package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()
	svc := NewJWTService("test-secret", "1h")

	tokenString, expiresAt, err := svc.GenerateAccessToken("u1", "t1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	decoded, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "t1", claims["tenant_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "access", claims["type"])

	wantExp := time.Now().Add(time.Hour)
	assert.WithinDuration(t, wantExp, time.Unix(expiresAt, 0), time.Minute)
	assert.WithinDuration(t, wantExp, decoded.Expiration(), time.Minute)
}

func TestGenerateAccessToken_BadExpiration(t *testing.T) {
	t.Parallel()
	svc := NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken("u1", "t1", "admin")
	assert.Error(t, err)
}

func TestGenerateAccessToken_RejectedByOtherSecret(t *testing.T) {
	t.Parallel()
	issuer := NewJWTService("issuer-secret", "1h")
	verifier := NewJWTService("other-secret", "1h")

	tokenString, _, err := issuer.GenerateAccessToken("u1", "t1", "admin")
	require.NoError(t, err)

	_, err = verifier.JWTAuth().Decode(tokenString)
	assert.Error(t, err)
}
