package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prafullkumar/chronos/pkg/logger"
)

// greetingBodyLimit caps how much of the upstream response is read. The
// generator returns a short sentence; anything larger is truncated.
const greetingBodyLimit = 4 << 10

// DefaultGreetingPrompt is used when the caller supplies no prompt of its own.
const DefaultGreetingPrompt = "Generate a short, warm one-line greeting for a reminders app home screen"

// GreetingService fetches a generated greeting line from a text generation
// endpoint. The upstream is plain GET /prompt/{prompt} returning the text
// body directly.
type GreetingService struct {
	client  *http.Client
	baseURL string
	log     *zap.Logger
}

// NewGreetingService constructs a GreetingService against baseURL. A nil
// client gets a default with a conservative timeout.
func NewGreetingService(baseURL string, client *http.Client) (*GreetingService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("greeting service: base url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GreetingService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.WithModule("greeting"),
	}, nil
}

// Generate requests a greeting for the prompt and returns the trimmed text.
func (s *GreetingService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultGreetingPrompt
	}

	endpoint := s.baseURL + "/prompt/" + url.PathEscape(prompt)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build greeting request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch greeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("greeting upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, greetingBodyLimit))
	if err != nil {
		return "", fmt.Errorf("read greeting response: %w", err)
	}

	greeting := strings.TrimSpace(string(body))
	if greeting == "" {
		return "", errors.New("greeting service: upstream returned empty body")
	}

	s.log.Debug("greeting generated", zap.Int("length", len(greeting)))
	return greeting, nil
}
