package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/internal/services"
	apperrors "github.com/prafullkumar/chronos/pkg/errors"
	"github.com/prafullkumar/chronos/pkg/logger"
	"github.com/prafullkumar/chronos/pkg/metrics"
)

// Service ties federated sign-in to the application session: it verifies the
// provider's ID token, merges the user document and issues the API token the
// client uses from then on.
type Service struct {
	identity IdentityProvider
	tokens   *JWTService
	users    *services.UserService
	log      *zap.Logger
}

// NewService constructs the auth service.
func NewService(identity IdentityProvider, tokens *JWTService, users *services.UserService) (*Service, error) {
	if identity == nil {
		return nil, errors.New("auth: identity provider is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: jwt service is required")
	}
	if users == nil {
		return nil, errors.New("auth: user service is required")
	}
	return &Service{
		identity: identity,
		tokens:   tokens,
		users:    users,
		log:      logger.WithModule("auth"),
	}, nil
}

// LoginResult carries the issued session back to the client.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      *models.User `json:"user"`
}

// Login exchanges a federated ID token for an application session. The user
// document is created on first sign-in and merged on every subsequent one.
func (s *Service) Login(ctx context.Context, rawIDToken string) (*LoginResult, error) {
	identity, err := s.identity.Verify(ctx, rawIDToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		s.log.Warn("id token verification failed", zap.Error(err))
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.CreateOrMerge(ctx, services.SignInProfile{
		UID:         identity.Subject,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		PhotoURL:    identity.PhotoURL,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("merge signed-in user: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(AccessTokenInput{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.log.Info("user logged in", zap.String("user_id", user.ID))

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}
