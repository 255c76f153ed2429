package krb5

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/credentials"
	"github.com/jcmturner/gokrb5/v8/keytab"

	"github.com/remctl-protocol/remctl-go/pkg/gss"
)

// Provider creates Kerberos initiator contexts for one client identity.
type Provider struct {
	cl     *client.Client
	logger *slog.Logger
}

// Login loads the Kerberos configuration and credentials described by cfg.
func Login(cfg Config) (*Provider, error) {
	krbConf, err := config.Load(cfg.ResolvedConfigPath())
	if err != nil {
		return nil, fmt.Errorf("krb5: load config: %w", err)
	}

	var cl *client.Client
	if cfg.KeytabPath != "" {
		cl, err = keytabClient(cfg, krbConf)
	} else {
		cl, err = ccacheClient(cfg, krbConf)
	}
	if err != nil {
		return nil, err
	}

	p := &Provider{cl: cl, logger: cfg.Logger}
	p.debug("kerberos credentials loaded", "principal", p.Principal())
	return p, nil
}

func keytabClient(cfg Config, krbConf *config.Config) (*client.Client, error) {
	if cfg.Principal == "" {
		return nil, fmt.Errorf("%w: keytab login needs a principal", ErrNoCredentials)
	}
	name, realm, err := splitPrincipal(cfg.Principal)
	if err != nil {
		return nil, err
	}
	kt, err := keytab.Load(cfg.KeytabPath)
	if err != nil {
		return nil, fmt.Errorf("krb5: load keytab: %w", err)
	}
	cl := client.NewWithKeytab(name, realm, kt, krbConf, client.DisablePAFXFAST(true))
	if err := cl.Login(); err != nil {
		return nil, fmt.Errorf("krb5: login %s: %w", cfg.Principal, err)
	}
	return cl, nil
}

func ccacheClient(cfg Config, krbConf *config.Config) (*client.Client, error) {
	path, err := cfg.ResolvedCCachePath()
	if err != nil {
		return nil, err
	}
	cc, err := credentials.LoadCCache(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}
	cl, err := client.NewFromCCache(cc, krbConf, client.DisablePAFXFAST(true))
	if err != nil {
		return nil, fmt.Errorf("krb5: credential cache %s: %w", path, err)
	}
	return cl, nil
}

// Principal returns the client principal as name@REALM.
func (p *Provider) Principal() string {
	creds := p.cl.Credentials
	return creds.CName().PrincipalNameString() + "@" + creds.Realm()
}

// NewContext creates an initiator context for the service principal
// target. A "@REALM" suffix is dropped; the realm comes from the
// domain_realm mapping in krb5.conf.
func (p *Provider) NewContext(target string) (gss.Context, error) {
	spn, _, _ := strings.Cut(target, "@")
	if spn == "" {
		return nil, fmt.Errorf("krb5: empty target principal")
	}
	return &Context{provider: p, target: spn}, nil
}

// Close destroys the client's tickets.
func (p *Provider) Close() {
	p.cl.Destroy()
}

func (p *Provider) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

var _ gss.Provider = (*Provider)(nil)
