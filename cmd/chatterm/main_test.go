package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/riordanpawley/chatterm/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config directory at a temp dir
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func parse(t *testing.T, args ...string) (*cobra.Command, *flags) {
	t.Helper()
	var f flags
	cmd := &cobra.Command{Use: "chatterm"}
	registerFlags(cmd, &f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &f
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSetupFlagsOverrideConfig(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `{"version":1,"server":{"host":"10.0.0.1","port":7000,"username":"file"}}`)

	cmd, f := parse(t, "--config", path, "--port", "9000", "--name", "al", "--log-level", "debug")
	cfg, _, err := setup(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "al", cfg.Server.Username)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestSetupLegacyConfig(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `{"ip":"10.0.0.9","port":6000,"name":"old"}`)

	cmd, f := parse(t, "--config", path)
	cfg, _, err := setup(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.9:6000", cfg.Addr())
	assert.Equal(t, "old", cfg.Server.Username)
}

func TestSetupUsesBookmarks(t *testing.T) {
	isolate(t)
	reg := &config.ServersRegistry{}
	require.NoError(t, reg.Add(config.Server{Name: "home", Host: "10.0.0.2", Port: 7100}))
	require.NoError(t, reg.Add(config.Server{Name: "work", Host: "chat.example.com", Port: 443, Transport: "websocket"}))
	require.NoError(t, config.SaveServersRegistry(reg))

	cmd, f := parse(t)
	cfg, _, err := setup(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:7100", cfg.Addr())

	cmd, f = parse(t, "--server", "work", "--ip", "10.1.1.1")
	cfg, _, err = setup(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1:443", cfg.Addr(), "flags beat the bookmark")
	assert.Equal(t, "websocket", cfg.Server.Transport)

	cmd, f = parse(t, "--server", "ghost")
	_, _, err = setup(cmd, f)
	assert.ErrorIs(t, err, config.ErrServerNotFound)
}

func TestSetupRejectsInvalidFlags(t *testing.T) {
	isolate(t)

	cmd, f := parse(t, "--port", "70000")
	_, _, err := setup(cmd, f)
	assert.ErrorContains(t, err, "invalid config")

	cmd, f = parse(t, "--config", filepath.Join(t.TempDir(), "missing.json"))
	_, _, err = setup(cmd, f)
	assert.Error(t, err)
}

func TestServersSubcommands(t *testing.T) {
	isolate(t)
	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"servers", "add", "home", "10.0.0.2:7100"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Server added: home")

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"servers", "ls"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "10.0.0.2:7100")

	reg, err := config.LoadServersRegistry()
	require.NoError(t, err)
	assert.Equal(t, "home", reg.DefaultServer)
}

func TestConfigInitSubcommand(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")
	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init", path})
	require.NoError(t, root.Execute())

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server, cfg.Server)

	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init", path})
	assert.ErrorContains(t, root.Execute(), "already exists")
}
