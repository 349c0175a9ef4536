package types

import (
	"encoding/hex"
	"net"
	"strings"
)

// HardwareAddress is a 48-bit MAC address in canonical form: 12 lowercase
// hex digits without separators. The zero value means the address is unknown.
type HardwareAddress string

const (
	// NoHardwareAddress marks an address that was never observed.
	NoHardwareAddress HardwareAddress = ""
	// InvalidHardwareAddress marks input that could not be normalized.
	InvalidHardwareAddress HardwareAddress = "invalid"
)

// NormalizeHardwareAddress converts raw input such as "B8:27:EB:AA:BB:CC" or
// "b8-27-eb-aa-bb-cc" into canonical form. Only ':' and '-' separate octets.
// Empty input yields NoHardwareAddress, anything else that is not exactly
// 12 hex digits once separators are removed yields InvalidHardwareAddress.
func NormalizeHardwareAddress(raw string) HardwareAddress {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoHardwareAddress
	}

	var b strings.Builder
	b.Grow(12)
	for _, r := range raw {
		switch {
		case r == ':' || r == '-':
			continue
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r + ('a' - 'A'))
		default:
			return InvalidHardwareAddress
		}
	}
	if b.Len() != 12 {
		return InvalidHardwareAddress
	}
	return HardwareAddress(b.String())
}

// FromHardwareAddr converts a parsed 6-byte MAC. Other lengths (EUI-64,
// InfiniBand) are not 48-bit addresses and yield InvalidHardwareAddress.
func FromHardwareAddr(mac net.HardwareAddr) HardwareAddress {
	if len(mac) == 0 {
		return NoHardwareAddress
	}
	if len(mac) != 6 {
		return InvalidHardwareAddress
	}
	return HardwareAddress(hex.EncodeToString(mac))
}

// Valid reports whether h holds a canonical 12 digit address.
func (h HardwareAddress) Valid() bool {
	return h != NoHardwareAddress && h != InvalidHardwareAddress && len(h) == 12
}

// Prefix returns the 6 digit vendor prefix (OUI), or "" for invalid addresses.
func (h HardwareAddress) Prefix() string {
	if !h.Valid() {
		return ""
	}
	return string(h[:6])
}
