package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, ReplyEcho, cfg.Server.Reply)
	require.Equal(t, "/ws", cfg.Client.Path)
	require.Equal(t, TransportGorilla, cfg.Client.Transport)
	require.Equal(t, 10*time.Second, cfg.Client.HandshakeTimeout)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wsconsole.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  reply: none
client:
  origin: "http://example.test"
`), 0o644))

	t.Setenv("WSCONSOLE_CLIENT_ORIGIN", "https://env.test")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":8080", "")
	require.NoError(t, fs.Parse([]string{"--addr", ":7000"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, ReplyNone, cfg.Server.Reply)
	require.Equal(t, "https://env.test", cfg.Client.Origin)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("WSCONSOLE_SERVER_REPLY", "shout")
	_, err := Load("", nil)
	require.Error(t, err)

	t.Setenv("WSCONSOLE_SERVER_REPLY", ReplyNone)
	t.Setenv("WSCONSOLE_CLIENT_TRANSPORT", "carrier-pigeon")
	_, err = Load("", nil)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
