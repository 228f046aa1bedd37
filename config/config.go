package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "WSCONSOLE"

// Reply modes for the command server.
const (
	ReplyNone = "none"
	ReplyEcho = "echo"
)

// Client transports.
const (
	TransportGorilla = "gorilla"
	TransportCoder   = "coder"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	DBPath    string `mapstructure:"db"`
	AssetsDir string `mapstructure:"assets_dir"`
	Reply     string `mapstructure:"reply"`
}

type ClientConfig struct {
	Origin           string        `mapstructure:"origin"`
	Path             string        `mapstructure:"path"`
	Transport        string        `mapstructure:"transport"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"addr":       "server.addr",
	"db":         "server.db",
	"assets-dir": "server.assets_dir",
	"reply":      "server.reply",
	"origin":     "client.origin",
	"path":       "client.path",
	"transport":  "client.transport",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.db", "")
	v.SetDefault("server.assets_dir", "")
	v.SetDefault("server.reply", ReplyEcho)
	v.SetDefault("client.origin", "http://localhost:8080")
	v.SetDefault("client.path", "/ws")
	v.SetDefault("client.transport", TransportGorilla)
	v.SetDefault("client.handshake_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from defaults, the optional file at path,
// WSCONSOLE_* environment variables and any flags in fs that were set,
// in increasing order of precedence.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Server.Reply {
	case ReplyNone, ReplyEcho:
	default:
		return fmt.Errorf("invalid server.reply %q", c.Server.Reply)
	}
	switch c.Client.Transport {
	case TransportGorilla, TransportCoder:
	default:
		return fmt.Errorf("invalid client.transport %q", c.Client.Transport)
	}
	if !strings.HasPrefix(c.Client.Path, "/") {
		return errors.New("client.path must start with /")
	}
	return nil
}
