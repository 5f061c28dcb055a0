package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Identity carries the verified profile claims of a federated sign-in.
type Identity struct {
	Subject     string
	DisplayName string
	Email       string
	PhotoURL    string
}

// IdentityProvider verifies a raw ID token minted by the federated identity
// provider and returns the profile claims it asserts.
type IdentityProvider interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

// OIDCConfig configures the OIDC-backed identity provider.
type OIDCConfig struct {
	Issuer     string
	ClientID   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// OIDCVerifier implements IdentityProvider against a discovered OIDC issuer.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier runs issuer discovery and builds the token verifier.
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*OIDCVerifier, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("oidc: issuer is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("oidc: client id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	issuer, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc: discovery failed: %w", err)
	}

	return &OIDCVerifier{
		verifier: issuer.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Verify validates the ID token signature and audience and extracts the
// profile claims.
func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, errors.New("oidc: id token is empty")
	}

	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("oidc: verify id token: %w", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc: decode claims: %w", err)
	}

	return &Identity{
		Subject:     token.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}, nil
}

var _ IdentityProvider = (*OIDCVerifier)(nil)
