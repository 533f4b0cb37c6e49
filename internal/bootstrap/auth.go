package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/backlot/backlot-api/config"
	"github.com/backlot/backlot-api/internal/adapters/devauth"
	"github.com/backlot/backlot-api/internal/adapters/oidc"
	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/auth"
)

// BuildIdentityProvider selects and constructs the identity provider for the
// configured auth mode.
//
//nolint:ireturn // the provider is consumed through the core port.
func BuildIdentityProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (core.IdentityProvider, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		if len(cfg.DevAuth.Tokens) == 0 {
			logger.Warn("dev auth enabled with built-in tokens; do not use outside development")
			return devauth.DefaultProvider(), nil
		}
		return devauth.NewProvider(cfg.DevAuth.Tokens)

	case config.AuthModeOIDC:
		return oidc.NewProvider(ctx, oidc.ProviderConfig{
			IssuerURL:   cfg.OIDC.IssuerURL,
			ClientID:    cfg.OIDC.ClientID,
			RoleClaim:   cfg.OIDC.RoleClaim,
			DefaultRole: auth.Role(cfg.OIDC.DefaultRole),
		})

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
