package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. MUTUALS_IDENTITY_REG_NO for identity.reg_no.
const EnvPrefix = "MUTUALS"

// DefaultRegistrationURL is the endpoint that hands out the task payload.
const DefaultRegistrationURL = "https://bfhldevapigw.healthrx.co.in/hiring/generateWebhook"

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"registration-url": "registration.url",
	"reg-no":           "identity.reg_no",
}

// NewFlagSet defines the command-line flags understood by Load.
// The caller is responsible for parsing it.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("registration-url", "", "override the registration endpoint")
	fs.String("reg-no", "", "registration number reported with the outcome")
	return fs
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("identity.name", "")
	v.SetDefault("identity.reg_no", "")
	v.SetDefault("identity.email", "")
	v.SetDefault("registration.url", DefaultRegistrationURL)
	v.SetDefault("delivery.max_attempts", 4)
	v.SetDefault("delivery.backoff", "1s")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("graph.duplicate_policy", DuplicateLastWins)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from, in increasing precedence: defaults, an
// optional config file, a .env file, environment variables and the given
// flags. fs may be nil. Returns a validated Config or an error.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

// readConfigFile reads the file named by --config, or mutuals.* from the
// working directory when no path is given. Only an explicitly named file is
// required to exist.
func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	var path string
	if fs != nil {
		path, _ = fs.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("mutuals")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}
