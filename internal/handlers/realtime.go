package handlers

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/prafullkumar/chronos/internal/auth"
	"github.com/prafullkumar/chronos/internal/notifications"
	"github.com/prafullkumar/chronos/pkg/errors"
	"github.com/prafullkumar/chronos/pkg/response"
)

// RealtimeHandler bridges authenticated WebSocket connections to the
// notification hub.
type RealtimeHandler struct {
	hub *notifications.Hub
	jwt *iauth.JWTService
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *notifications.Hub, jwt *iauth.JWTService) (*RealtimeHandler, error) {
	if hub == nil {
		return nil, stderrors.New("handlers: hub is required")
	}
	if jwt == nil {
		return nil, stderrors.New("handlers: jwt service is required")
	}
	return &RealtimeHandler{hub: hub, jwt: jwt}, nil
}

// Stream upgrades the connection and streams reminder events to the client.
// Browsers cannot set headers on WebSocket dials, so the token may also
// arrive as a query parameter.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		authz := c.GetHeader("Authorization")
		if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(claims.UserID, c.Writer, c.Request)
}
