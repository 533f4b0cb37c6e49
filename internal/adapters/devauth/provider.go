// Package devauth provides a static, config-driven identity provider for
// local development. Tokens map directly to identities; no external identity
// system is involved.
package devauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/auth"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// Provider implements core.IdentityProvider from a fixed token table.
type Provider struct {
	identities map[string]auth.Identity
}

var _ core.IdentityProvider = (*Provider)(nil)

// NewProvider builds a provider from entries of the form
// "token=user_id:role[:email]". Roles must be one of the known roles.
func NewProvider(entries []string) (*Provider, error) {
	identities := make(map[string]auth.Identity, len(entries))
	for _, entry := range entries {
		token, identity, err := parseEntry(entry)
		if err != nil {
			return nil, err
		}
		if _, dup := identities[token]; dup {
			return nil, fmt.Errorf("dev auth: duplicate token %q", token)
		}
		identities[token] = identity
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("dev auth: at least one token entry is required")
	}
	return &Provider{identities: identities}, nil
}

// DefaultProvider returns a provider with one token per role, convenient for
// local smoke testing.
func DefaultProvider() *Provider {
	return &Provider{identities: map[string]auth.Identity{
		"dev-actor": {UserID: "dev-actor-1", Email: "actor@backlot.local", Role: auth.RoleActor},
		"dev-hirer": {UserID: "dev-hirer-1", Email: "hirer@backlot.local", Role: auth.RoleHirer},
		"dev-admin": {UserID: "dev-admin-1", Email: "admin@backlot.local", Role: auth.RoleAdmin},
	}}
}

// Authenticate resolves a bearer token to its configured identity.
func (p *Provider) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	identity, ok := p.identities[token]
	if !ok {
		return nil, apperrors.Unauthorized("unknown token")
	}
	return &identity, nil
}

func parseEntry(entry string) (string, auth.Identity, error) {
	token, spec, found := strings.Cut(strings.TrimSpace(entry), "=")
	if !found || token == "" {
		return "", auth.Identity{}, fmt.Errorf("dev auth: malformed entry %q", entry)
	}

	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", auth.Identity{}, fmt.Errorf("dev auth: malformed entry %q, want token=user_id:role[:email]", entry)
	}

	identity := auth.Identity{
		UserID: strings.TrimSpace(parts[0]),
		Role:   auth.Role(strings.TrimSpace(parts[1])),
	}
	if len(parts) == 3 {
		identity.Email = strings.TrimSpace(parts[2])
	}

	if identity.UserID == "" {
		return "", auth.Identity{}, fmt.Errorf("dev auth: entry %q has empty user id", entry)
	}
	if !identity.Role.Valid() {
		return "", auth.Identity{}, fmt.Errorf("dev auth: entry %q has unknown role %q", entry, identity.Role)
	}
	return token, identity, nil
}
