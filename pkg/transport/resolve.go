package transport

import (
	"context"
	"net"
	"strings"
)

// NetResolver canonicalizes host names through DNS. Lookup failures fall
// back to the name as given.
type NetResolver struct {
	// Resolver is the DNS resolver (default: net.DefaultResolver).
	Resolver *net.Resolver
}

// CanonicalHost returns the CNAME target of a host name, or the first PTR
// name of an IP literal, without a trailing dot.
func (r NetResolver) CanonicalHost(ctx context.Context, host string) (string, error) {
	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}

	if net.ParseIP(host) != nil {
		names, err := res.LookupAddr(ctx, host)
		if err != nil || len(names) == 0 {
			return host, nil
		}
		return strings.TrimSuffix(names[0], "."), nil
	}

	cname, err := res.LookupCNAME(ctx, host)
	if err != nil || cname == "" {
		return strings.TrimSuffix(host, "."), nil
	}
	return strings.TrimSuffix(cname, "."), nil
}

// StaticResolver returns names unchanged. Useful with explicit principals
// and in tests.
type StaticResolver struct{}

// CanonicalHost returns host without a trailing dot.
func (StaticResolver) CanonicalHost(_ context.Context, host string) (string, error) {
	return strings.TrimSuffix(host, "."), nil
}
