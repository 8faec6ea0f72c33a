package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rbright/neuroscan/internal/backend"
	"github.com/rbright/neuroscan/internal/cli"
	"github.com/rbright/neuroscan/internal/config"
	"github.com/rbright/neuroscan/internal/identity"
	"github.com/rbright/neuroscan/internal/render"
	"github.com/rbright/neuroscan/internal/screening"
)

func newBackendClient(cfg config.BackendConfig) (*backend.Client, error) {
	return backend.New(backend.Options{
		BaseURL:    cfg.URL,
		HealthPath: cfg.HealthPath,
		Timeout:    cfg.Timeout(),
	})
}

func (r Runner) commandLogin(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	role := parsed.Role
	if role == "" {
		role = string(screening.RolePatient)
	}

	client, err := newBackendClient(cfg.Backend)
	if err != nil {
		return r.fail(logger, "backend setup failed", err)
	}
	resp, err := client.Login(ctx, backend.LoginRequest{
		Username: parsed.Username,
		Password: parsed.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return r.fail(logger, "login rejected", backend.ErrUnauthorized)
		}
		return r.fail(logger, "login failed", err)
	}

	store, err := identity.DefaultStore()
	if err != nil {
		return r.fail(logger, "identity store unavailable", err)
	}
	saved := identity.Identity{Role: role, ID: resp.ID.String(), Name: resp.Name}
	if err := store.Save(saved); err != nil {
		return r.fail(logger, "save identity failed", err)
	}

	logger.Info("login complete", "role", role, "identity", store.Path)
	name := saved.Name
	if name == "" {
		name = parsed.Username
	}
	fmt.Fprintf(r.Stdout, "logged in as %s (%s)\n", name, role)
	return 0
}

func (r Runner) commandRegister(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	client, err := newBackendClient(cfg.Backend)
	if err != nil {
		return r.fail(logger, "backend setup failed", err)
	}
	message, err := client.Register(ctx, backend.RegisterRequest{
		Username: parsed.Username,
		Password: parsed.Password,
		Name:     parsed.Name,
		Age:      parsed.Age,
		Contact:  parsed.Contact,
	})
	if err != nil {
		return r.fail(logger, "register failed", err)
	}
	if message == "" {
		message = "registered"
	}
	fmt.Fprintln(r.Stdout, message)
	return 0
}

func (r Runner) commandLogout(logger *slog.Logger) int {
	store, err := identity.DefaultStore()
	if err != nil {
		return r.fail(logger, "identity store unavailable", err)
	}
	removed, err := store.Remove()
	if err != nil {
		return r.fail(logger, "logout failed", err)
	}
	if !removed {
		fmt.Fprintln(r.Stdout, "not logged in")
		return 0
	}
	fmt.Fprintln(r.Stdout, "logged out")
	return 0
}

func (r Runner) commandResults(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	auth, _, err := resolveAuth(cli.Parsed{}, cfg.Auth, logger)
	if err != nil {
		return r.fail(logger, "resolve identity failed", err)
	}
	if !auth.Is(screening.RoleDoctor) {
		r.warn("results are intended for doctors (current role: %s)", roleLabel(auth.Role))
	}

	client, err := newBackendClient(cfg.Backend)
	if err != nil {
		return r.fail(logger, "backend setup failed", err)
	}
	records, err := client.Results(ctx)
	if err != nil {
		return r.fail(logger, "list results failed", err)
	}
	fmt.Fprint(r.Stdout, render.Results(records))
	return 0
}

func roleLabel(role screening.Role) string {
	if role == "" {
		return "none"
	}
	return string(role)
}
