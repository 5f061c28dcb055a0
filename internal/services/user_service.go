package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/internal/models"
	"github.com/prafullkumar/chronos/internal/store"
	"github.com/prafullkumar/chronos/pkg/logger"
)

// UserService maintains the per-user profile document. Identity lives with
// the federated provider; this service only merges display data on sign-in
// and serves the profile back.
type UserService struct {
	docs store.DocumentStore
	log  *zap.Logger
}

// NewUserService constructs a UserService backed by the document store.
func NewUserService(docs store.DocumentStore) (*UserService, error) {
	if docs == nil {
		return nil, errors.New("user service: document store is required")
	}
	return &UserService{
		docs: docs,
		log:  logger.WithModule("users"),
	}, nil
}

// SignInProfile carries the identity claims merged into the user document.
type SignInProfile struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
}

// CreateOrMerge writes the user document on sign-in. A first sign-in creates
// the document; subsequent sign-ins only refresh the last-login timestamp,
// leaving the reminder count and profile fields untouched.
func (s *UserService) CreateOrMerge(ctx context.Context, profile SignInProfile) (*models.User, error) {
	if profile.UID == "" {
		return nil, errors.New("user service: uid is required")
	}

	user := &models.User{
		ID:          profile.UID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		PhotoURL:    profile.PhotoURL,
		LastLogin:   time.Now(),
	}
	if err := s.docs.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("merge user document: %w", err)
	}

	merged, err := s.docs.GetUser(ctx, profile.UID)
	if err != nil {
		return nil, fmt.Errorf("load merged user: %w", err)
	}

	s.log.Info("user signed in", zap.String("user_id", profile.UID))
	return merged, nil
}

// Get returns the user's profile document.
func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.docs.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
