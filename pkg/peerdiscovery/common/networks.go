package common

import (
	"fmt"
	"net"

	"github.com/projectdiscovery/mapcidr"
)

var mask24 = net.CIDRMask(24, 32)

// Network24 returns the /24 network containing ip, i.e. the address with
// its last octet replaced by 0/24. It returns nil for non-IPv4 input.
func Network24(ip net.IP) *net.IPNet {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	return &net.IPNet{
		IP:   ip4.Mask(mask24),
		Mask: mask24,
	}
}

// HostAddresses expands a /24 network into its 254 host addresses (.1-.254)
// in ascending order.
func HostAddresses(network *net.IPNet) ([]net.IP, error) {
	if network == nil {
		return nil, fmt.Errorf("no network given")
	}
	ones, bits := network.Mask.Size()
	if ones != 24 || bits != 32 {
		return nil, fmt.Errorf("network %s is not a /24 network", network.String())
	}

	cidrStr := network.String()
	ips, err := mapcidr.IPAddresses(cidrStr)
	if err != nil {
		return nil, fmt.Errorf("failed to expand CIDR %s: %w", cidrStr, err)
	}

	hosts := make([]net.IP, 0, len(ips))
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr).To4()
		if ip == nil {
			continue
		}
		// Skip network and broadcast addresses
		if IsNetworkOrBroadcast(ip, network) {
			continue
		}
		hosts = append(hosts, ip)
	}
	return hosts, nil
}
