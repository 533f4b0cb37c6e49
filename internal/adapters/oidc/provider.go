// Package oidc verifies bearer ID tokens against an OIDC issuer and maps
// their claims to marketplace identities.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/auth"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// ProviderConfig holds configuration for the OIDC token verifier.
type ProviderConfig struct {
	// IssuerURL is the issuer or its discovery document URL; the
	// .well-known suffix is stripped if present.
	IssuerURL string
	ClientID  string
	// RoleClaim names the claim carrying the marketplace role. Defaults to
	// "role".
	RoleClaim string
	// DefaultRole is assumed when the token carries no role claim and the
	// userinfo endpoint has none either. Empty means tokens without a role
	// are rejected.
	DefaultRole auth.Role
	HTTPClient  *http.Client // Optional, defaults to a 30s-timeout client
}

// Provider implements core.IdentityProvider using go-oidc.
type Provider struct {
	verifier     *gooidc.IDTokenVerifier
	oidcProvider *gooidc.Provider
	roleClaim    string
	defaultRole  auth.Role
	httpClient   *http.Client
}

var _ core.IdentityProvider = (*Provider)(nil)

// NewProvider performs OIDC discovery once and builds a token verifier.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("oidc: issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}
	if cfg.DefaultRole != "" && !cfg.DefaultRole.Valid() {
		return nil, fmt.Errorf("oidc: unknown default role %q", cfg.DefaultRole)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	discoveryCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(discoveryCtx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	roleClaim := cfg.RoleClaim
	if roleClaim == "" {
		roleClaim = "role"
	}

	return &Provider{
		verifier:     op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		oidcProvider: op,
		roleClaim:    roleClaim,
		defaultRole:  cfg.DefaultRole,
		httpClient:   httpClient,
	}, nil
}

// Authenticate verifies a raw ID token and maps its claims to an identity.
// When the token itself carries no role claim, the userinfo endpoint is
// consulted before falling back to the configured default role.
func (p *Provider) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	idToken, err := p.verifier.Verify(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid token")
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "unreadable token claims")
	}

	identity := auth.Identity{
		UserID: idToken.Subject,
		Email:  stringClaim(claims, "email"),
		Role:   auth.Role(stringClaim(claims, p.roleClaim)),
	}

	if identity.Role == "" {
		p.fillFromUserInfo(ctx, token, &identity)
	}
	if identity.Role == "" {
		identity.Role = p.defaultRole
	}

	if identity.UserID == "" {
		return nil, apperrors.Unauthorized("token is missing a subject")
	}
	if !identity.Role.Valid() {
		return nil, apperrors.Unauthorized("token carries no usable role")
	}
	return &identity, nil
}

// fillFromUserInfo fetches the userinfo document and fills missing identity
// fields. Failures leave the identity untouched; the caller decides whether
// what remains is enough.
func (p *Provider) fillFromUserInfo(ctx context.Context, token string, identity *auth.Identity) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	info, err := p.oidcProvider.UserInfo(ctx, source)
	if err != nil {
		return
	}

	var claims map[string]any
	if err := info.Claims(&claims); err != nil {
		return
	}
	if identity.Email == "" {
		identity.Email = stringClaim(claims, "email")
	}
	if role := stringClaim(claims, p.roleClaim); role != "" {
		identity.Role = auth.Role(role)
	}
}

func stringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
