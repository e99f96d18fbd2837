// Package config loads the indexer settings. Values are read, from lowest
// to highest precedence, from the built-in defaults, an optional TOML file
// and CREDWATCH_* environment variables.
//
// RPC endpoints may embed the ${DWELLIR_KEY} and ${ONFINALITY_KEY}
// placeholders, which are replaced by the matching API keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabapcia/credwatch/internal/pkg/validator"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix prefixes every environment variable, e.g. CREDWATCH_NETWORK.
const envPrefix = "CREDWATCH"

var (
	// ErrMissingAPIKey is returned when an endpoint references an API key
	// that is not set.
	ErrMissingAPIKey = errors.New("endpoint references an unset api key")

	// ErrUnknownPlaceholder is returned when an endpoint references a
	// placeholder other than the supported API keys.
	ErrUnknownPlaceholder = errors.New("unknown endpoint placeholder")
)

// Redis locates the Redis server. An empty Addr keeps every record in
// process memory.
type Redis struct {
	Addr     string `toml:"addr" split_words:"true" validate:"omitempty,hostname_port"`
	Username string `toml:"username" split_words:"true"`
	Password string `toml:"password" split_words:"true"`
	DB       int    `toml:"db" split_words:"true" validate:"gte=0,lte=15"`
}

// Telemetry toggles the OTLP exporters. The collector is located through
// the standard OTEL_EXPORTER_OTLP_* variables.
type Telemetry struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true" validate:"required_if=Enabled true"`
}

// Config holds every setting of the indexer.
type Config struct {
	Network      string   `toml:"network" split_words:"true" validate:"required"`
	RPCEndpoints []string `toml:"rpc_endpoints" split_words:"true" validate:"required,min=1,dive,http_url"`
	SidecarURL   string   `toml:"sidecar_url" split_words:"true" validate:"required,url"`

	// StartBlock is the first height indexed when no checkpoint exists.
	// Starting above 1 tolerates references to records created earlier.
	StartBlock   uint64        `toml:"start_block" split_words:"true" validate:"gte=1"`
	PollInterval time.Duration `toml:"poll_interval" split_words:"true" validate:"gt=0"`

	RequestTimeout    time.Duration `toml:"request_timeout" split_words:"true" validate:"gt=0"`
	RetryAttempts     uint          `toml:"retry_attempts" split_words:"true" validate:"gte=1"`
	MaxProcessingTime time.Duration `toml:"max_processing_time" split_words:"true" validate:"gt=0"`

	LogLevel string `toml:"log_level" split_words:"true" validate:"oneof=debug info warn error"`

	Redis     Redis     `toml:"redis"`
	Telemetry Telemetry `toml:"telemetry"`

	DwellirKey    string `toml:"-" envconfig:"DWELLIR_KEY"`
	OnFinalityKey string `toml:"-" envconfig:"ONFINALITY_KEY"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Network:           "spiritnet",
		StartBlock:        1,
		PollInterval:      12 * time.Second,
		RequestTimeout:    10 * time.Second,
		RetryAttempts:     5,
		MaxProcessingTime: 5 * time.Minute,
		LogLevel:          "info",
		Telemetry: Telemetry{
			ServiceName: "credwatch",
		},
	}
}

// Load builds the configuration. path names an optional TOML file; an
// empty path skips it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	endpoints, err := cfg.expandEndpoints()
	if err != nil {
		return Config{}, err
	}
	cfg.RPCEndpoints = endpoints

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ToleratesHistoryGaps reports whether indexing starts after genesis, in
// which case records created before StartBlock are missing.
func (c Config) ToleratesHistoryGaps() bool {
	return c.StartBlock > 1
}

func (c Config) expandEndpoints() ([]string, error) {
	keys := map[string]string{
		"DWELLIR_KEY":    c.DwellirKey,
		"ONFINALITY_KEY": c.OnFinalityKey,
	}

	endpoints := make([]string, 0, len(c.RPCEndpoints))
	for _, endpoint := range c.RPCEndpoints {
		var errs []error
		expanded := os.Expand(strings.TrimSpace(endpoint), func(name string) string {
			key, ok := keys[name]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownPlaceholder, name))
			case key == "":
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingAPIKey, name))
			}
			return key
		})

		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}

		endpoints = append(endpoints, expanded)
	}

	return endpoints, nil
}
