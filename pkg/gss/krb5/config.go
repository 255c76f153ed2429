package krb5

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Environment variables consulted for default paths.
const (
	EnvConfig = "KRB5_CONFIG"
	EnvCCache = "KRB5CCNAME"
)

// DefaultConfigPath is used when neither Config.ConfigPath nor KRB5_CONFIG is set.
const DefaultConfigPath = "/etc/krb5.conf"

// ErrNoCredentials is returned when no keytab is configured and no
// credential cache can be found.
var ErrNoCredentials = errors.New("krb5: no credentials available")

// Config selects the Kerberos configuration and credentials.
type Config struct {
	// ConfigPath is the krb5.conf location.
	ConfigPath string

	// KeytabPath authenticates Principal from a keytab when set.
	// Otherwise credentials come from the credential cache.
	KeytabPath string

	// CCachePath is the credential cache file.
	CCachePath string

	// Principal is the client principal for keytab logins, as
	// "name[/instance]@REALM". Ignored for credential cache logins.
	Principal string

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// ResolvedConfigPath returns the krb5.conf path to load.
func (c Config) ResolvedConfigPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	if p := os.Getenv(EnvConfig); p != "" {
		// KRB5_CONFIG may list several files; the first one wins here.
		return strings.SplitN(p, ":", 2)[0]
	}
	return DefaultConfigPath
}

// ResolvedCCachePath returns the credential cache path to load.
func (c Config) ResolvedCCachePath() (string, error) {
	if c.CCachePath != "" {
		return c.CCachePath, nil
	}
	if name := os.Getenv(EnvCCache); name != "" {
		kind, path, found := strings.Cut(name, ":")
		if !found {
			return name, nil
		}
		if kind != "FILE" {
			return "", fmt.Errorf("krb5: unsupported credential cache type %q", kind)
		}
		return path, nil
	}
	return fmt.Sprintf("/tmp/krb5cc_%d", os.Getuid()), nil
}

// splitPrincipal splits "name@REALM" into its parts.
func splitPrincipal(principal string) (name, realm string, err error) {
	i := strings.LastIndexByte(principal, '@')
	if i <= 0 || i == len(principal)-1 {
		return "", "", fmt.Errorf("krb5: principal %q must be name@REALM", principal)
	}
	return principal[:i], principal[i+1:], nil
}
