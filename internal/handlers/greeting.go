package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/pkg/errors"
	"github.com/prafullkumar/chronos/pkg/response"
)

// GreetingHandler serves the generated home screen greeting.
type GreetingHandler struct {
	greetings *services.GreetingService
}

// NewGreetingHandler constructs a greeting handler.
func NewGreetingHandler(greetings *services.GreetingService) (*GreetingHandler, error) {
	if greetings == nil {
		return nil, stderrors.New("handlers: greeting service is required")
	}
	return &GreetingHandler{greetings: greetings}, nil
}

// Get fetches a greeting line, optionally for a caller-supplied prompt.
func (h *GreetingHandler) Get(c *gin.Context) {
	greeting, err := h.greetings.Generate(c.Request.Context(), c.Query("prompt"))
	if err != nil {
		response.Error(c, errors.New("GREETING_UNAVAILABLE", "Greeting could not be generated", http.StatusBadGateway).WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"greeting": greeting})
}
