// Package config loads and validates the relay's runtime configuration: a
// required positional upstream-resolver argument plus optional
// "DNSFWD_"-prefixed environment variable overrides, following the
// koanf + go-playground/validator pattern the rest of this codebase uses.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds the relay's full runtime configuration.
type AppConfig struct {
	// Env selects the zap encoder profile ("dev" for human-readable
	// colorized output, "prod" for structured JSON).
	Env      string         `koanf:"env" validate:"required,oneof=dev prod"`
	Log      LoggingConfig  `koanf:"log" validate:"required"`
	Listen   string         `koanf:"listen" validate:"required,ip_port"`
	Buffer   int            `koanf:"buffer" validate:"required,gte=512,lte=65535"`
	Upstream UpstreamConfig `koanf:"upstream" validate:"required"`
}

// LoggingConfig controls the zap-backed logger's verbosity.
type LoggingConfig struct {
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// UpstreamConfig describes the single configured resolver this relay
// forwards every question to, per spec.md §1's "single configured
// upstream" scope.
type UpstreamConfig struct {
	// Address is the upstream resolver's "host:port", supplied as the
	// process's required positional argument (spec.md §6).
	Address string `koanf:"address" validate:"required,ip_port"`

	// Timeout bounds each per-question upstream round trip (spec.md §9
	// open question 3).
	Timeout time.Duration `koanf:"timeout" validate:"required,gt=0"`
}

// DefaultAppConfig defines the configuration in force before any
// environment override or positional argument is applied. Upstream.Address
// has no usable default (spec.md §6 requires it be supplied explicitly),
// so it is left empty and rejected by Load as invalid input when still
// unset after CLI parsing.
var DefaultAppConfig = AppConfig{
	Env: "prod",
	Log: LoggingConfig{
		Level: "info",
	},
	Listen: "127.0.0.1:2053",
	Buffer: 512,
	Upstream: UpstreamConfig{
		Timeout: 2 * time.Second,
	},
}

// validIPPort validates that a field holds a "host:port" address with a
// parseable IP and an in-range port.
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || port == "" {
		return false
	}
	if net.ParseIP(host) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

// envLoader loads "DNSFWD_"-prefixed environment variables, lower-casing
// and dot-joining the remaining key so DNSFWD_LOG_LEVEL maps to "log.level"
// and DNSFWD_UPSTREAM_TIMEOUT maps to "upstream.timeout". Declared as a var
// so tests can substitute a failing loader.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNSFWD_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "DNSFWD_")), "_", ".")
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DefaultAppConfig into k via the structs provider.
// Declared as a var so tests can substitute a failing loader.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil)
}

// registerValidation wires the "ip_port" custom tag into v. Declared as a
// var so tests can substitute a failing registration.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load builds an AppConfig from defaults, environment overrides, and the
// process's command-line arguments (args excludes argv[0]). spec.md §6
// requires exactly one positional argument: the upstream resolver address.
// Its absence is reported as an invalid-input error rather than falling
// back to any default, since a relay with no upstream has nothing useful
// to do.
func Load(args []string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	positional := firstNonFlag(args)
	if positional != "" {
		cfg.Upstream.Address = positional
	}
	if cfg.Upstream.Address == "" {
		return nil, fmt.Errorf("invalid input: missing required <upstream-resolver> argument")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return &cfg, nil
}

// firstNonFlag returns the first argument not prefixed with "-", or "" if
// none is present. The relay takes no flags (spec.md §6), but tolerating
// an accidental flag here keeps a stray "-h" from being misread as the
// upstream address.
func firstNonFlag(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}
