package clicks

import (
	"net/netip"
	"strings"

	"linkly/internal/entities"
)

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// NormalizeIP strips IPv4-mapped prefixes and zones and reports IPv6 loopback as
// 127.0.0.1. Input that is not an address becomes Unknown.
func NormalizeIP(raw string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return entities.Unknown
	}

	addr = addr.Unmap().WithZone("")
	if addr == netip.IPv6Loopback() {
		return "127.0.0.1"
	}
	return addr.String()
}

// isNonPublic reports addresses that no geolocation database can place.
func isNonPublic(addr netip.Addr) bool {
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}
