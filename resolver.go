package pingprobe

import (
	"context"
	"net"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// ErrResolution is returned when a hostname yields no usable address.
var ErrResolution = errors.New("hostname did not resolve")

// Resolve looks up the first IPv4 address for host. Numeric addresses
// pass through unchanged.
func Resolve(ctx context.Context, host string) (netip.Addr, error) {
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, errors.Wrapf(ErrResolution, "lookup %q: %v", host, err)
	}
	if len(addrs) == 0 {
		return netip.Addr{}, errors.Wrapf(ErrResolution, "lookup %q: no addresses", host)
	}
	return addrs[0].Unmap(), nil
}

// ReverseResolve returns the PTR name for addr, or the empty string when
// the address has no reverse mapping.
func ReverseResolve(ctx context.Context, addr netip.Addr) string {
	names, err := net.DefaultResolver.LookupAddr(ctx, addr.String())
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}
