// Package config loads the handler configuration from defaults, an optional
// config file, .env, the environment and command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "ACMDNS"

const (
	DeletePolicyRetain = "retain"
	DeletePolicyRemove = "remove"
)

// AWSConfig selects region and credentials; empty values use the SDK default chain
type AWSConfig struct {
	Region          string `mapstructure:"aws_region"`
	Profile         string `mapstructure:"aws_profile"`
	AccessKeyID     string `mapstructure:"aws_access_key_id"`
	SecretAccessKey string `mapstructure:"aws_secret_access_key"`
	SessionToken    string `mapstructure:"aws_session_token"`
}

// PollConfig bounds the wait for ACM validation records
type PollConfig struct {
	Attempts int           `mapstructure:"poll_attempts"`
	Interval time.Duration `mapstructure:"poll_interval"`
}

// Config holds the configuration shared by the Lambda handlers
type Config struct {
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error

	AWS  AWSConfig  `mapstructure:",squash"`
	Poll PollConfig `mapstructure:",squash"`

	RecordTTL    int64  `mapstructure:"record_ttl"`
	DeletePolicy string `mapstructure:"delete_policy"` // retain | remove

	AWSCallTimeout  time.Duration `mapstructure:"aws_call_timeout"`
	ResponseTimeout time.Duration `mapstructure:"response_timeout"`
	ResponseMargin  time.Duration `mapstructure:"response_margin"`
}

// Dump returns the config as indented JSON with credentials redacted
func (c Config) Dump() string {
	cp := c
	if cp.AWS.SecretAccessKey != "" {
		cp.AWS.SecretAccessKey = "REDACTED"
	}
	if cp.AWS.SessionToken != "" {
		cp.AWS.SessionToken = "REDACTED"
	}
	b, _ := json.MarshalIndent(cp, "", "  ")
	return string(b)
}

// Load merges defaults → config file → env vars → explicit flags.
// Final precedence (highest wins): flags(explicit) > env > config file > defaults.
func Load(logger *zap.Logger, args []string) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded .env file")
	}

	flags := pflag.NewFlagSet("acm-dns-validation", pflag.ContinueOnError)
	flags.String("config", "", "Path to a config file (yaml, json or toml)")
	flags.String("env", "dev", `Runtime environment "dev"|"prod"`)
	flags.String("log_level", "info", "Log level")
	flags.String("aws_region", "", "AWS region (default: SDK chain)")
	flags.String("aws_profile", "", "Shared config profile")
	flags.Int("poll_attempts", 5, "Attempts to fetch ACM validation records")
	flags.Duration("poll_interval", time.Second, "Pause between validation record attempts")
	flags.Int64("record_ttl", 900, "TTL of validation CNAME records in seconds")
	flags.String("delete_policy", DeletePolicyRetain, "On Delete: retain (no-op) or remove validation records")
	flags.Duration("aws_call_timeout", 30*time.Second, "Timeout of a single AWS API call")
	flags.Duration("response_timeout", 10*time.Second, "Timeout of the CloudFormation response PUT")
	flags.Duration("response_margin", 2*time.Second, "Time reserved before the invocation deadline to send the response")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	setDefaults(v)

	if f := flags.Lookup("config"); f.Changed {
		_ = v.BindPFlag("config", f)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logger.Info("Loaded config file", zap.String("file", path))
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			logger.Info("Loaded config file", zap.String("file", v.ConfigFileUsed()))
		}
	}

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.DeletePolicy = strings.ToLower(strings.TrimSpace(cfg.DeletePolicy))

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func allKeys() []string {
	return []string{
		"config", "env", "log_level",
		"aws_region", "aws_profile", "aws_access_key_id", "aws_secret_access_key", "aws_session_token",
		"poll_attempts", "poll_interval",
		"record_ttl", "delete_policy",
		"aws_call_timeout", "response_timeout", "response_margin",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")

	v.SetDefault("poll_attempts", 5)
	v.SetDefault("poll_interval", "1s")

	v.SetDefault("record_ttl", 900)
	v.SetDefault("delete_policy", DeletePolicyRetain)

	v.SetDefault("aws_call_timeout", "30s")
	v.SetDefault("response_timeout", "10s")
	v.SetDefault("response_margin", "2s")
}

func validate(cfg Config) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}
	if cfg.Poll.Attempts <= 0 {
		invalid = append(invalid, "poll_attempts must be > 0")
	}
	if cfg.Poll.Interval <= 0 {
		invalid = append(invalid, "poll_interval must be > 0")
	}
	if cfg.RecordTTL <= 0 {
		invalid = append(invalid, "record_ttl must be > 0")
	}
	if cfg.DeletePolicy != DeletePolicyRetain && cfg.DeletePolicy != DeletePolicyRemove {
		invalid = append(invalid, `delete_policy must be "retain" or "remove"`)
	}
	if cfg.AWSCallTimeout <= 0 {
		invalid = append(invalid, "aws_call_timeout must be > 0")
	}
	if cfg.ResponseTimeout <= 0 {
		invalid = append(invalid, "response_timeout must be > 0")
	}
	if cfg.ResponseMargin < 0 {
		invalid = append(invalid, "response_margin must be >= 0")
	}
	if (cfg.AWS.AccessKeyID == "") != (cfg.AWS.SecretAccessKey == "") {
		missing = append(missing, EnvPrefix+"_AWS_ACCESS_KEY_ID and "+EnvPrefix+"_AWS_SECRET_ACCESS_KEY must be set together")
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(parts, " | "))
}
