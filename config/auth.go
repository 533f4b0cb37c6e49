package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOIDC verifies bearer tokens against an OIDC issuer.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses a static token table (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev)", v)
	}
}

// OIDCConfig contains OIDC token verification configuration.
type OIDCConfig struct {
	IssuerURL string `env:"ISSUER_URL"`
	ClientID  string `env:"CLIENT_ID"    envDefault:"backlot"`
	RoleClaim string `env:"ROLE_CLAIM"   envDefault:"role"`
	// DefaultRole is assumed for tokens carrying no role claim; empty
	// rejects such tokens.
	DefaultRole string `env:"DEFAULT_ROLE" envDefault:""`
}

// DevAuthConfig controls static dev authentication tokens.
// Used when AUTH_MODE=dev for development and testing. Entries take the form
// "token=user_id:role[:email]"; empty falls back to the built-in dev tokens.
type DevAuthConfig struct {
	Tokens []string `env:"TOKENS" envDefault:"" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}
