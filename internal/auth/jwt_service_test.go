package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, clock func() time.Time) *JWTService {
	t.Helper()
	service, err := NewJWTService(JWTConfig{
		Secret: "test-secret",
		Issuer: "chronos-test",
		Clock:  clock,
	})
	require.NoError(t, err)
	return service
}

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	service := newTestJWTService(t, nil)

	token, err := service.GenerateAccessToken(AccessTokenInput{
		UserID:      "uid-1",
		DisplayName: "Asha",
		Email:       "asha@example.com",
	})
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "uid-1", claims.UserID)
	require.Equal(t, "Asha", claims.DisplayName)
	require.Equal(t, "asha@example.com", claims.Email)
	require.Equal(t, "chronos-test", claims.Issuer)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-48 * time.Hour)
	issuer := newTestJWTService(t, func() time.Time { return issuedAt })

	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: "uid-1"})
	require.NoError(t, err)

	validator := newTestJWTService(t, nil)
	_, err = validator.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := newTestJWTService(t, nil)
	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: "uid-1"})
	require.NoError(t, err)

	other, err := NewJWTService(JWTConfig{Secret: "different-secret"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestGenerateRequiresUserID(t *testing.T) {
	service := newTestJWTService(t, nil)

	_, err := service.GenerateAccessToken(AccessTokenInput{})
	require.Error(t, err)
}

func TestValidateRejectsEmptyToken(t *testing.T) {
	service := newTestJWTService(t, nil)

	_, err := service.ValidateAccessToken("")
	require.Error(t, err)
}
