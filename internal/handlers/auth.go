package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/prafullkumar/chronos/internal/auth"
	"github.com/prafullkumar/chronos/internal/middleware"
	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/pkg/errors"
	"github.com/prafullkumar/chronos/pkg/response"
	"github.com/prafullkumar/chronos/pkg/validator"
)

// AuthHandler exposes the sign-in and profile endpoints.
type AuthHandler struct {
	auth  *iauth.Service
	users *services.UserService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth *iauth.Service, users *services.UserService) (*AuthHandler, error) {
	if auth == nil {
		return nil, stderrors.New("handlers: auth service is required")
	}
	if users == nil {
		return nil, stderrors.New("handlers: user service is required")
	}
	return &AuthHandler{auth: auth, users: users}, nil
}

type loginPayload struct {
	IDToken string `json:"idToken" validate:"required"`
}

// Login exchanges a federated ID token for an application session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, errors.NewBadRequest("invalid login payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), payload.IDToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Me returns the authenticated user's profile document.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		if stderrors.Is(err, services.ErrUserNotFound) {
			response.Error(c, errors.NewNotFound("user not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
