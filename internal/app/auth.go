package app

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/rbright/neuroscan/internal/cli"
	"github.com/rbright/neuroscan/internal/config"
	"github.com/rbright/neuroscan/internal/identity"
	"github.com/rbright/neuroscan/internal/screening"
)

// Identity sources reported in logs.
const (
	authSourceFlags    = "flags"
	authSourceIdentity = "identity"
	authSourceConfig   = "config"
	authSourceNone     = "none"
)

// resolveAuth picks the session identity: explicit flags, then the saved
// login, then the static config identity.
func resolveAuth(parsed cli.Parsed, cfg config.AuthConfig, logger *slog.Logger) (screening.AuthContext, string, error) {
	if parsed.PatientID != "" {
		return screening.AuthContext{
			Role:      screening.RolePatient,
			PatientID: parsed.PatientID,
			Name:      parsed.Name,
		}, authSourceFlags, nil
	}

	store, err := identity.DefaultStore()
	if err != nil {
		return screening.AuthContext{}, "", err
	}
	saved, err := store.Load()
	switch {
	case err == nil:
		auth, authErr := saved.Auth()
		if authErr != nil {
			return screening.AuthContext{}, "", authErr
		}
		if parsed.Name != "" {
			auth.Name = parsed.Name
		}
		return auth, authSourceIdentity, nil
	case errors.Is(err, identity.ErrNotFound):
	default:
		if logger != nil {
			logger.Warn("identity unreadable; ignoring", "error", err.Error())
		}
	}

	role, err := screening.ParseRole(cfg.Role)
	if err != nil {
		return screening.AuthContext{}, "", err
	}
	auth := screening.AuthContext{
		Role:      role,
		PatientID: strings.TrimSpace(cfg.PatientID),
		Name:      strings.TrimSpace(cfg.Name),
	}
	if parsed.Name != "" {
		auth.Name = parsed.Name
	}
	if auth.Anonymous() && auth.Role == "" {
		return auth, authSourceNone, nil
	}
	return auth, authSourceConfig, nil
}
