package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prafullkumar/chronos/internal/database/testutil"
	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/internal/store"
	apperrors "github.com/prafullkumar/chronos/pkg/errors"
)

type staticIdentity struct {
	identity *Identity
	err      error
}

func (s *staticIdentity) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newAuthFixture(t *testing.T, identity IdentityProvider) *Service {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	docs, err := store.NewDocuments(db)
	require.NoError(t, err)

	users, err := services.NewUserService(docs)
	require.NoError(t, err)

	tokens, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "chronos-test"})
	require.NoError(t, err)

	service, err := NewService(identity, tokens, users)
	require.NoError(t, err)
	return service
}

func TestLoginIssuesTokenAndCreatesUser(t *testing.T) {
	service := newAuthFixture(t, &staticIdentity{identity: &Identity{
		Subject:     "uid-1",
		DisplayName: "Asha",
		Email:       "asha@example.com",
	}})

	result, err := service.Login(context.Background(), "provider-id-token")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Positive(t, result.ExpiresIn)
	require.Equal(t, "uid-1", result.User.ID)
	require.Equal(t, "Asha", result.User.DisplayName)
}

func TestLoginRejectsBadIDToken(t *testing.T) {
	service := newAuthFixture(t, &staticIdentity{err: errors.New("signature mismatch")})

	_, err := service.Login(context.Background(), "forged")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRepeatLoginMergesInsteadOfDuplicating(t *testing.T) {
	provider := &staticIdentity{identity: &Identity{Subject: "uid-1", DisplayName: "Asha"}}
	service := newAuthFixture(t, provider)
	ctx := context.Background()

	first, err := service.Login(ctx, "token")
	require.NoError(t, err)

	provider.identity.DisplayName = "Renamed"
	second, err := service.Login(ctx, "token")
	require.NoError(t, err)

	require.Equal(t, first.User.ID, second.User.ID)
	require.Equal(t, "Asha", second.User.DisplayName)
}
