package pagescan

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"
)

var errPrivateAddress = errors.New("connection to private/reserved network address refused")

// The textual URL filter runs before any fetch, but it cannot see what a
// hostname resolves to. This dialer re-checks the resolved address at
// connect time, which also defeats DNS-rebinding.
// References:
// - https://snyk.io/articles/how-to-avoid-ssrf-vulnerability-in-go-applications/
// - https://logoi.dny.dev/2022/12/02/implementing-ssrf-protections-in-golang/

// reservedPrefixes covers ranges the netip.Addr predicates (IsLoopback,
// IsPrivate, IsLinkLocalUnicast, IsLinkLocalMulticast, IsUnspecified)
// do not flag.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),   // Carrier-grade NAT (RFC 6598)
	netip.MustParsePrefix("192.0.0.0/24"),    // IETF protocol assignments (RFC 6890)
	netip.MustParsePrefix("192.0.2.0/24"),    // TEST-NET-1 (RFC 5737)
	netip.MustParsePrefix("198.18.0.0/15"),   // Benchmarking (RFC 2544)
	netip.MustParsePrefix("198.51.100.0/24"), // TEST-NET-2 (RFC 5737)
	netip.MustParsePrefix("203.0.113.0/24"),  // TEST-NET-3 (RFC 5737)
}

// safeDialer returns a net.Dialer that refuses connections to private,
// loopback, link-local, and reserved IP ranges. The check runs after DNS
// resolution, on the address actually being dialed.
func safeDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refusePrivateAddress,
	}
}

func refusePrivateAddress(_ string, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", errPrivateAddress, err)
	}

	if isReservedIP(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", errPrivateAddress, addrPort.Addr())
	}

	return nil
}

func isReservedIP(addr netip.Addr) bool {
	// Unmap IPv4-in-IPv6 (::ffff:127.0.0.1 -> 127.0.0.1) so mapped
	// addresses cannot bypass the IPv4 checks.
	addr = addr.Unmap()

	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return true
	}

	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
