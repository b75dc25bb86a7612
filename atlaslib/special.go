package atlaslib

import (
	"net"
	"strings"
)

// Source identity of synthetic results produced without consulting any
// database.
const (
	ClassifierSourceName = "classifier"
	SystemSourceName     = "system"
	SpecialSourceKind    = "special"
)

var (
	blockClassA = mustParseCIDR("10.0.0.0/8")
	blockClassB = mustParseCIDR("172.16.0.0/12")
	blockClassC = mustParseCIDR("192.168.0.0/16")
)

func mustParseCIDR(value string) *net.IPNet {
	_, network, err := net.ParseCIDR(value)
	if err != nil {
		panic(err)
	}

	return network
}

// stripCIDR removes a trailing network suffix: "10.0.0.1/24" -> "10.0.0.1".
func stripCIDR(ip string) string {
	if idx := strings.IndexByte(ip, '/'); idx >= 0 {
		return ip[:idx]
	}

	return ip
}

// Classify decides whether an address is special (private, loopback,
// multicast, link-local or reserved) and, if so, builds a synthetic
// QueryResult for it. Public unicast addresses and malformed input both
// yield nil: a malformed address is not special, the per-source query path
// reports it.
func Classify(ip string) *QueryResult {
	parsed := net.ParseIP(strings.TrimSpace(stripCIDR(ip)))
	if parsed == nil {
		return nil
	}

	rv := &QueryResult{
		SourceName: ClassifierSourceName,
		SourceKind: SpecialSourceKind,
		Success:    true,
		IsSpecial:  true,
	}
	isV4 := parsed.To4() != nil

	switch {
	case parsed.IsPrivate():
		rv.Country = "private network"
		rv.Region = "private address space"
		rv.City = "LAN"
		rv.ISP = "internal network"

		switch {
		case blockClassA.Contains(parsed):
			rv.Region = "class A private network (10.0.0.0/8)"
			rv.NetworkCIDR = blockClassA.String()
		case blockClassB.Contains(parsed):
			rv.Region = "class B private network (172.16.0.0/12)"
			rv.NetworkCIDR = blockClassB.String()
		case blockClassC.Contains(parsed):
			rv.Region = "class C private network (192.168.0.0/16)"
			rv.NetworkCIDR = blockClassC.String()
		case !isV4:
			rv.Region = "unique local address (fc00::/7)"
			rv.NetworkCIDR = "fc00::/7"
		}
	case parsed.IsLoopback():
		rv.Country = "loopback"
		rv.Region = "loopback address"
		rv.City = "localhost"
		rv.ISP = "system"
		rv.NetworkCIDR = "127.0.0.0/8"

		if !isV4 {
			rv.NetworkCIDR = "::1/128"
		}
	case parsed.IsMulticast():
		rv.Country = "multicast"
		rv.Region = "multicast network"
		rv.ISP = "multicast"
		rv.NetworkCIDR = "224.0.0.0/4"

		if !isV4 {
			rv.NetworkCIDR = "ff00::/8"
		}
	case parsed.IsLinkLocalUnicast():
		rv.Country = "link-local"
		rv.Region = "autoconfiguration address"
		rv.City = "local link"
		rv.ISP = "local link"
		rv.NetworkCIDR = "169.254.0.0/16"

		if !isV4 {
			rv.NetworkCIDR = "fe80::/10"
		}
	case isReserved(parsed, isV4):
		rv.Country = "reserved"
		rv.Region = "reserved address"
		rv.ISP = "IANA reserved"
	default:
		return nil
	}

	return rv
}

// isReserved covers what the other category checks do not: 0.0.0.0/8 and
// 240.0.0.0/4 for IPv4, everything that is not global unicast for IPv6.
func isReserved(ip net.IP, isV4 bool) bool {
	if isV4 {
		v4 := ip.To4()

		return v4[0] == 0 || v4[0] >= 240
	}

	return !ip.IsGlobalUnicast()
}

// isPrivateAddr tells if an address (with optional CIDR suffix) belongs to
// a private unicast range.
func isPrivateAddr(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(stripCIDR(ip)))

	return parsed != nil && parsed.IsPrivate()
}
