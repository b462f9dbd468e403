// Package config merges defaults, a TOML config file, an optional .env
// file, environment variables, and CLI flags into one typed
// configuration, in ascending priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully merged, typed configuration for apsisd.
type Config struct {
	// Bind is either a TCP "host:port" or a filesystem path to listen on
	// as a Unix domain socket.
	Bind string `mapstructure:"bind"`

	// Advertise is the address announced to the DHT as serving blocks
	// this node writes.
	Advertise string `mapstructure:"advertise"`

	// AuthToken is the bearer token required on R2N.
	AuthToken string `mapstructure:"auth_token"`

	// DBPath is the directory the block store opens.
	DBPath string `mapstructure:"db_path"`

	// Verbosity is a logrus-compatible level count: 0 is the default
	// (info), each increment lowers the level by one step.
	Verbosity int `mapstructure:"verbosity"`
}

func defaults() Config {
	return Config{
		Bind:      "127.0.0.1:8080",
		Advertise: "127.0.0.1:8080",
		DBPath:    "./apsis-data",
		Verbosity: 0,
	}
}

// Load merges, in ascending priority: built-in defaults, a TOML file at
// configPath (if non-empty and present), a .env file in the working
// directory (if present), environment variables prefixed APSIS_, and any
// flags already set on flags.
func Load(configPath string, flags *pflag.FlagSet) (Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetDefault("bind", cfg.Bind)
	v.SetDefault("advertise", cfg.Advertise)
	v.SetDefault("auth_token", cfg.AuthToken)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("verbosity", cfg.Verbosity)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			// SetConfigFile makes a missing file surface as an fs error
			// rather than ConfigFileNotFoundError; tolerate both.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	// godotenv populates the process environment so viper's AutomaticEnv
	// picks it up below; a missing .env file is not an error.
	_ = godotenv.Load()

	v.SetEnvPrefix("APSIS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Flag names are kebab-case on the command line but the mapstructure
	// keys above are snake_case; bind each explicitly rather than relying
	// on BindPFlags' by-name match, which would silently drop auth-token
	// and db-path.
	if flags != nil {
		for key, flagName := range map[string]string{
			"bind":       "bind",
			"advertise":  "advertise",
			"auth_token": "auth-token",
			"db_path":    "db-path",
		} {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: bind flag %s: %w", flagName, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
