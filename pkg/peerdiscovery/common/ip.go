package common

import "net"

// IsNetworkOrBroadcast checks if an IPv4 address is the network or broadcast
// address of the given network.
func IsNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}

	ip4 := ip.To4()
	base := network.IP.To4()
	if ip4 == nil || base == nil || len(network.Mask) != net.IPv4len {
		return false
	}

	if ip4.Equal(base.Mask(network.Mask)) {
		return true
	}

	broadcast := make(net.IP, net.IPv4len)
	copy(broadcast, base)
	for i := range broadcast {
		broadcast[i] |= ^network.Mask[i]
	}
	return ip4.Equal(broadcast)
}
