// Package config loads remctl client settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/remctl-protocol/remctl-go/pkg/gss/krb5"
	"github.com/remctl-protocol/remctl-go/pkg/remctl"
	"github.com/remctl-protocol/remctl-go/pkg/transport"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the client configuration file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Kerberos KerberosConfig `yaml:"kerberos"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig names the server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Principal overrides the default host/<fqdn> principal.
	Principal string `yaml:"principal"`
}

// TimeoutConfig bounds network operations.
type TimeoutConfig struct {
	Connect Duration `yaml:"connect"`

	// IO bounds the exchange after connecting. Zero means no limit.
	IO Duration `yaml:"io"`
}

// ProtocolConfig tunes the protocol engine.
type ProtocolConfig struct {
	MaxTokenSize       uint32 `yaml:"max_token_size"`
	MaxContextRounds   int    `yaml:"max_context_rounds"`
	OptionalRequestMIC bool   `yaml:"optional_request_mic"`
}

// KerberosConfig selects credentials. A keytab takes precedence over the
// ticket cache.
type KerberosConfig struct {
	Config string `yaml:"config"`
	Keytab string `yaml:"keytab"`
	CCache string `yaml:"ccache"`

	// Client is the client principal; required with a keytab.
	Client string `yaml:"client"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// ProtocolLog is a CBOR capture file path. Empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns a configuration with defaults for everything but the host.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: remctl.DefaultPort},
		Timeouts: TimeoutConfig{
			Connect: Duration(remctl.DefaultConnectTimeout),
		},
		Protocol: ProtocolConfig{
			MaxTokenSize:     transport.DefaultMaxTokenSize,
			MaxContextRounds: remctl.DefaultMaxContextRounds,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges. The host may be empty here; it is often
// supplied on the command line.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Timeouts.Connect < 0 || c.Timeouts.IO < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if c.Protocol.MaxTokenSize == 0 {
		return fmt.Errorf("%w: protocol.max_token_size must be positive", ErrInvalidConfig)
	}
	if c.Protocol.MaxContextRounds < 1 {
		return fmt.Errorf("%w: protocol.max_context_rounds must be positive", ErrInvalidConfig)
	}
	if c.Kerberos.Keytab != "" && c.Kerberos.Client == "" {
		return fmt.Errorf("%w: kerberos.keytab requires kerberos.client", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// ClientConfig returns the engine configuration. Loggers are left for the
// caller to set.
func (c *Config) ClientConfig() remctl.Config {
	return remctl.Config{
		Host:               c.Server.Host,
		Port:               c.Server.Port,
		Principal:          c.Server.Principal,
		ConnectTimeout:     c.Timeouts.Connect.Std(),
		IOTimeout:          c.Timeouts.IO.Std(),
		MaxTokenSize:       c.Protocol.MaxTokenSize,
		MaxContextRounds:   c.Protocol.MaxContextRounds,
		OptionalRequestMIC: c.Protocol.OptionalRequestMIC,
	}
}

// KerberosConfig returns the credential configuration.
func (c *Config) KerberosConfig() krb5.Config {
	return krb5.Config{
		ConfigPath: c.Kerberos.Config,
		KeytabPath: c.Kerberos.Keytab,
		CCachePath: c.Kerberos.CCache,
		Principal:  c.Kerberos.Client,
	}
}
