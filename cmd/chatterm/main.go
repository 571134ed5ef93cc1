// Package main provides the entry point for chatterm, a terminal chat client.
//
// Usage:
//
//	chatterm [--ip host] [--port n] [--name user] [--server bookmark]
//	chatterm servers add|list|remove|default
//	chatterm config init|show
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/chatterm/internal/app"
	"github.com/riordanpawley/chatterm/internal/cli"
	"github.com/riordanpawley/chatterm/internal/config"
	"github.com/riordanpawley/chatterm/internal/core/notify"
	"github.com/riordanpawley/chatterm/internal/services/chat"
	"github.com/spf13/cobra"
)

// flags holds the root command's connection overrides
type flags struct {
	configPath string
	server     string
	host       string
	port       int
	transport  string
	path       string
	name       string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "chatterm",
		Short: "A terminal chat client with inline file previews",
		Long: `chatterm connects to a chat server and shows rooms, users and messages.

Files shared in a room can be previewed in a popup: images are drawn with
half-block characters, text and markdown are rendered in the terminal.

Press ? for key bindings once running.`,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd, &f)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	registerFlags(root, &f)
	root.AddCommand(newServersCmd(&f), newConfigCmd(&f))
	return root
}

// registerFlags binds the root command's flags to f
func registerFlags(root *cobra.Command, f *flags) {
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "config file (default: user config, then ./"+config.ProjectFile+")")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	fl := root.Flags()
	fl.StringVarP(&f.server, "server", "s", "", "bookmarked server to connect to")
	fl.StringVar(&f.host, "ip", "", "server host (default 127.0.0.1)")
	fl.IntVarP(&f.port, "port", "p", 0, "server port (default 42069)")
	fl.StringVar(&f.transport, "transport", "", "tcp or websocket")
	fl.StringVar(&f.path, "path", "", "websocket endpoint path")
	fl.StringVarP(&f.name, "name", "n", "", "username to take after connecting")
}

// loadDeps loads the config files and the servers registry
func loadDeps(f *flags) (*cli.Dependencies, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	return cli.NewDependencies(cfg, nil)
}

// setup loads config, applies the bookmark and then the flags
func setup(cmd *cobra.Command, f *flags) (*config.Config, *cli.Dependencies, error) {
	deps, err := loadDeps(f)
	if err != nil {
		return nil, nil, err
	}
	cfg := deps.Config
	if err := cli.ResolveServer(deps, f.server); err != nil {
		return nil, nil, err
	}

	// Flags beat everything else.
	changed := cmd.Flags().Changed
	if changed("ip") {
		cfg.Server.Host = f.host
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("transport") {
		cfg.Server.Transport = f.transport
	}
	if changed("path") {
		cfg.Server.Path = f.path
	}
	if changed("name") {
		cfg.Server.Username = f.name
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, deps, nil
}

// run starts the TUI and blocks until it exits
func run(cfg *config.Config) error {
	logger, closer, err := cli.OpenLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("starting chatterm", "version", config.Version, "addr", cfg.Addr(), "transport", cfg.Server.Transport)

	dialer, err := chat.NewDialer(cfg.Server.Transport, cfg.Server.Path, cfg.DialTimeout())
	if err != nil {
		return err
	}

	events := notify.New()
	defer events.Close()
	client := chat.NewClient(dialer, cfg.Addr(), events.Sender(), logger)
	defer client.Close()

	cfg.Preview.MarkdownStyle = cli.ResolveMarkdownStyle(cfg.Preview.MarkdownStyle, lipgloss.HasDarkBackground)
	model := app.New(cfg, client, events, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	// Give the reader goroutine a moment to log the close.
	select {
	case <-client.Done():
	case <-time.After(200 * time.Millisecond):
	}

	if m, ok := final.(app.Model); ok && m.Err() != nil {
		logger.Error("stopped", "error", m.Err())
		return m.Err()
	}
	logger.Info("stopped")
	return nil
}

func newServersCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage bookmarked servers",
	}

	deps := func(cmd *cobra.Command) (*cli.Dependencies, error) {
		d, err := loadDeps(f)
		if err != nil {
			return nil, err
		}
		d.Out = cmd.OutOrStdout()
		return d, nil
	}

	var transport string
	add := &cobra.Command{
		Use:   "add <name> <host:port>",
		Short: "Bookmark a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := deps(cmd)
			if err != nil {
				return err
			}
			return cli.ServersAddCommand(d, args[0], args[1], transport)
		},
	}
	add.Flags().StringVar(&transport, "transport", "", "tcp or websocket")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarked servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := deps(cmd)
			if err != nil {
				return err
			}
			return cli.ServersListCommand(d)
		},
	}

	remove := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := deps(cmd)
			if err != nil {
				return err
			}
			return cli.ServersRemoveCommand(d, args[0])
		},
	}

	def := &cobra.Command{
		Use:   "default <name>",
		Short: "Connect to this bookmark when no server is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := deps(cmd)
			if err != nil {
				return err
			}
			return cli.ServersDefaultCommand(d, args[0])
		},
	}

	cmd.AddCommand(add, list, remove, def)
	return cmd
}

func newConfigCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if len(args) == 1 {
				path = args[0]
			}
			deps := &cli.Dependencies{Out: cmd.OutOrStdout()}
			return cli.ConfigInitCommand(deps, path, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, d, err := setup(cmd, f)
			if err != nil {
				return err
			}
			d.Out = cmd.OutOrStdout()
			return cli.ConfigShowCommand(d)
		},
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}
