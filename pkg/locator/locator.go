// Package locator determines the interface, local IPv4 address and /24
// network a scan runs on.
package locator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/lanscan/pkg/types"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// probeAddress is only used to let the kernel pick a source address for an
// outbound UDP socket. No packet is sent.
const probeAddress = "192.0.2.1:9"

// Locator resolves the NetworkContext of a scan.
type Locator struct {
	defaultInterface func() (string, error)
	outboundAddress  func() (net.IP, error)
	interfaces       func(ctx context.Context) (psnet.InterfaceStatList, error)
	hostname         func() (string, error)
	lookupIP         func(ctx context.Context, host string) ([]net.IPAddr, error)
}

// New returns a Locator backed by the operating system.
func New() *Locator {
	return &Locator{
		defaultInterface: defaultRouteInterface,
		outboundAddress:  outboundAddress,
		interfaces:       psnet.InterfacesWithContext,
		hostname:         os.Hostname,
		lookupIP:         net.DefaultResolver.LookupIPAddr,
	}
}

// Locate returns the scan's NetworkContext. When capable is set the default
// route interface is inspected first; otherwise, or when that yields no
// address, the local hostname is resolved and the interface is reported as
// unknown. A *LocatorError is returned only when both paths fail.
func (l *Locator) Locate(ctx context.Context, capable bool) (*types.NetworkContext, error) {
	if capable {
		nc, err := l.fromInterface(ctx)
		if err == nil {
			return nc, nil
		}
		gologger.Verbose().Msgf("locator: interface lookup failed, resolving hostname: %s", err)
	}

	nc, err := l.fromHostname(ctx)
	if err != nil {
		return nil, &LocatorError{Reason: "no local IPv4 address", Err: err}
	}
	return nc, nil
}

func (l *Locator) fromInterface(ctx context.Context) (*types.NetworkContext, error) {
	ifaces, err := l.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list interfaces: %w", err)
	}

	name, err := l.defaultInterface()
	if err == nil && name != "" {
		for _, iface := range ifaces {
			if iface.Name != name {
				continue
			}
			if ip := firstIPv4(iface); ip != nil {
				return newContext(iface.Name, ip), nil
			}
			return nil, fmt.Errorf("default interface %s has no IPv4 address", name)
		}
		return nil, fmt.Errorf("default interface %s not found", name)
	}

	local, err := l.outboundAddress()
	if err != nil {
		return nil, fmt.Errorf("could not determine outbound address: %w", err)
	}
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			if ip := parseAddr(addr.Addr); ip != nil && ip.Equal(local) {
				return newContext(iface.Name, ip), nil
			}
		}
	}
	return nil, fmt.Errorf("no interface owns %s", local)
}

func (l *Locator) fromHostname(ctx context.Context) (*types.NetworkContext, error) {
	host, err := l.hostname()
	if err != nil {
		return nil, fmt.Errorf("could not read hostname: %w", err)
	}
	addrs, err := l.lookupIP(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", host, err)
	}

	ip := pickAddress(addrs)
	if ip == nil {
		return nil, fmt.Errorf("%s has no IPv4 address", host)
	}
	return newContext(types.UnknownInterface, ip), nil
}

// pickAddress prefers the first non-loopback IPv4 address and settles for a
// loopback one when nothing else resolved.
func pickAddress(addrs []net.IPAddr) net.IP {
	var loopback net.IP
	for _, addr := range addrs {
		ip4 := addr.IP.To4()
		if ip4 == nil {
			continue
		}
		if ip4.IsLoopback() {
			if loopback == nil {
				loopback = ip4
			}
			continue
		}
		return ip4
	}
	return loopback
}

func firstIPv4(iface psnet.InterfaceStat) net.IP {
	for _, addr := range iface.Addrs {
		if ip := parseAddr(addr.Addr); ip != nil {
			return ip
		}
	}
	return nil
}

// parseAddr accepts "a.b.c.d/n" and bare "a.b.c.d" and returns nil for
// anything but IPv4.
func parseAddr(s string) net.IP {
	if ip, _, err := net.ParseCIDR(s); err == nil {
		return ip.To4()
	}
	return net.ParseIP(strings.TrimSpace(s)).To4()
}

func newContext(iface string, ip net.IP) *types.NetworkContext {
	return &types.NetworkContext{
		Interface:    iface,
		LocalAddress: ip,
		Network:      common.Network24(ip),
	}
}

func outboundAddress() (net.IP, error) {
	conn, err := net.Dial("udp4", probeAddress)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil {
		return nil, errors.New("no IPv4 source address")
	}
	return addr.IP.To4(), nil
}
