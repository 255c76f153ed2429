package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/remctl-protocol/remctl-go/pkg/remctl"
)

const sample = `
server:
  host: shell.example.org
  port: 4373
  principal: host/shell.example.org@EXAMPLE.ORG
timeouts:
  connect: 5s
  io: 1m30s
protocol:
  max_context_rounds: 8
  optional_request_mic: true
kerberos:
  config: /etc/krb5.example.conf
  keytab: /etc/remctl.keytab
  client: service/remctl@EXAMPLE.ORG
logging:
  level: debug
  protocol_log: /tmp/remctl.rlog
`

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, remctl.DefaultPort, cfg.Server.Port)
	assert.Equal(t, remctl.DefaultConnectTimeout, cfg.Timeouts.Connect.Std())
	assert.Zero(t, cfg.Timeouts.IO)
	assert.Equal(t, remctl.DefaultMaxContextRounds, cfg.Protocol.MaxContextRounds)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "shell.example.org", cfg.Server.Host)
	assert.Equal(t, 4373, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Connect.Std())
	assert.Equal(t, 90*time.Second, cfg.Timeouts.IO.Std())
	assert.Equal(t, 8, cfg.Protocol.MaxContextRounds)
	assert.True(t, cfg.Protocol.OptionalRequestMIC)
	assert.Equal(t, "/tmp/remctl.rlog", cfg.Logging.ProtocolLog)

	// Unset keys keep their defaults.
	assert.Equal(t, Default().Protocol.MaxTokenSize, cfg.Protocol.MaxTokenSize)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("server:\n  hostname: x\n"))
	assert.ErrorContains(t, err, "hostname")
}

func TestParseBadDuration(t *testing.T) {
	_, err := Parse([]byte("timeouts:\n  connect: soon\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestDurationRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(TimeoutConfig{Connect: Duration(2 * time.Second)})
	require.NoError(t, err)
	assert.Contains(t, string(out), "connect: 2s")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shell.example.org", cfg.Server.Host)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":       func(c *Config) { c.Server.Port = 70000 },
		"timeout":    func(c *Config) { c.Timeouts.IO = Duration(-time.Second) },
		"token size": func(c *Config) { c.Protocol.MaxTokenSize = 0 },
		"rounds":     func(c *Config) { c.Protocol.MaxContextRounds = 0 },
		"keytab":     func(c *Config) { c.Kerberos.Keytab = "/etc/krb5.keytab" },
		"log level":  func(c *Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestClientAndKerberosConfig(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	cc := cfg.ClientConfig()
	assert.Equal(t, "shell.example.org", cc.Host)
	assert.Equal(t, 4373, cc.Port)
	assert.Equal(t, "host/shell.example.org@EXAMPLE.ORG", cc.Principal)
	assert.Equal(t, 90*time.Second, cc.IOTimeout)
	assert.True(t, cc.OptionalRequestMIC)

	kc := cfg.KerberosConfig()
	assert.Equal(t, "/etc/krb5.example.conf", kc.ConfigPath)
	assert.Equal(t, "/etc/remctl.keytab", kc.KeytabPath)
	assert.Equal(t, "service/remctl@EXAMPLE.ORG", kc.Principal)
}
