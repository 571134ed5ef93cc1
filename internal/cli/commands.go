// Package cli implements the non-interactive chatterm subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/riordanpawley/chatterm/internal/config"
)

// Dependencies holds what the subcommands read and write
type Dependencies struct {
	Config   *config.Config
	Registry *config.ServersRegistry
	// SaveRegistry persists Registry after a change.
	SaveRegistry func(*config.ServersRegistry) error
	Out          io.Writer
	Logger       *slog.Logger
}

// NewDependencies loads the servers registry for cfg
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := config.LoadServersRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load servers registry: %w", err)
	}
	return &Dependencies{
		Config:       cfg,
		Registry:     registry,
		SaveRegistry: config.SaveServersRegistry,
		Out:          os.Stdout,
		Logger:       logger,
	}, nil
}

// ResolveServer points the config at the named bookmark, or at the default
// bookmark when name is empty. With no bookmarks the config is left alone.
func ResolveServer(deps *Dependencies, name string) error {
	var server *config.Server
	if name != "" {
		s, err := deps.Registry.Get(name)
		if err != nil {
			return fmt.Errorf("server %q: %w", name, err)
		}
		server = s
	} else {
		server = deps.Registry.GetDefault()
	}
	if server == nil {
		return nil
	}

	deps.Logger.Debug("using bookmarked server", "name", server.Name, "addr", server.Addr())
	server.Apply(deps.Config)
	return nil
}

// ServersListCommand prints the bookmarked servers
func ServersListCommand(deps *Dependencies) error {
	if len(deps.Registry.Servers) == 0 {
		fmt.Fprintln(deps.Out, "No saved servers")
		return nil
	}

	w := tabwriter.NewWriter(deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tTRANSPORT\tDEFAULT")
	fmt.Fprintln(w, "----\t-------\t---------\t-------")

	for _, s := range deps.Registry.Servers {
		transport := s.Transport
		if transport == "" {
			transport = "tcp"
		}
		def := ""
		if s.Name == deps.Registry.DefaultServer {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Addr(), transport, def)
	}

	return w.Flush()
}

// ServersAddCommand bookmarks addr under name
func ServersAddCommand(deps *Dependencies, name, addr, transport string) error {
	server, err := config.ParseServer(name, addr, transport)
	if err != nil {
		return err
	}
	if err := deps.Registry.Add(server); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if err := deps.SaveRegistry(deps.Registry); err != nil {
		return fmt.Errorf("failed to save servers registry: %w", err)
	}

	deps.Logger.Info("server added", "name", name, "addr", server.Addr())
	fmt.Fprintf(deps.Out, "✓ Server added: %s (%s)\n", name, server.Addr())
	return nil
}

// ServersRemoveCommand deletes a bookmark
func ServersRemoveCommand(deps *Dependencies, name string) error {
	if err := deps.Registry.Remove(name); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	if err := deps.SaveRegistry(deps.Registry); err != nil {
		return fmt.Errorf("failed to save servers registry: %w", err)
	}

	fmt.Fprintf(deps.Out, "✓ Server removed: %s\n", name)
	return nil
}

// ServersDefaultCommand makes name the server used when none is given
func ServersDefaultCommand(deps *Dependencies, name string) error {
	if err := deps.Registry.SetDefault(name); err != nil {
		return fmt.Errorf("default %s: %w", name, err)
	}
	if err := deps.SaveRegistry(deps.Registry); err != nil {
		return fmt.Errorf("failed to save servers registry: %w", err)
	}

	fmt.Fprintf(deps.Out, "✓ Default server: %s\n", name)
	return nil
}

// ConfigInitCommand writes the default config to path. An existing file is
// only replaced when force is set.
func ConfigInitCommand(deps *Dependencies, path string, force bool) error {
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file: %w", err)
	}

	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}

	fmt.Fprintf(deps.Out, "✓ Config written: %s\n", path)
	return nil
}

// ConfigShowCommand prints the effective config
func ConfigShowCommand(deps *Dependencies) error {
	data, err := config.MarshalVersionedConfig(deps.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = fmt.Fprintln(deps.Out, string(data))
	return err
}
