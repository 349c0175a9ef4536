package locator

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	psnet "github.com/shirou/gopsutil/v3/net"
)

func testLocator() *Locator {
	return &Locator{
		defaultInterface: func() (string, error) { return "eth0", nil },
		outboundAddress:  func() (net.IP, error) { return net.ParseIP("10.1.2.3"), nil },
		interfaces: func(context.Context) (psnet.InterfaceStatList, error) {
			return psnet.InterfaceStatList{
				{Name: "lo", Addrs: psnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
				{Name: "eth0", Addrs: psnet.InterfaceAddrList{{Addr: "fe80::1/64"}, {Addr: "192.168.1.50/24"}}},
				{Name: "wlan0", Addrs: psnet.InterfaceAddrList{{Addr: "10.1.2.3/16"}}},
			}, nil
		},
		hostname: func() (string, error) { return "workstation", nil },
		lookupIP: func(context.Context, string) ([]net.IPAddr, error) {
			return []net.IPAddr{{IP: net.ParseIP("172.16.5.9")}}, nil
		},
	}
}

func TestLocateCapable(t *testing.T) {
	nc, err := testLocator().Locate(context.Background(), true)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if nc.Interface != "eth0" {
		t.Errorf("Interface = %s, want eth0", nc.Interface)
	}
	if nc.LocalAddress.String() != "192.168.1.50" {
		t.Errorf("LocalAddress = %s, want 192.168.1.50", nc.LocalAddress)
	}
	if nc.Network.String() != "192.168.1.0/24" {
		t.Errorf("Network = %s, want 192.168.1.0/24", nc.Network)
	}
}

func TestLocateOutboundAddress(t *testing.T) {
	l := testLocator()
	l.defaultInterface = func() (string, error) { return "", nil }

	nc, err := l.Locate(context.Background(), true)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if nc.Interface != "wlan0" || nc.Network.String() != "10.1.2.0/24" {
		t.Errorf("Locate() = %s %s, want wlan0 10.1.2.0/24", nc.Interface, nc.Network)
	}
}

func TestLocateFallsBackToHostname(t *testing.T) {
	l := testLocator()
	l.defaultInterface = func() (string, error) { return "eth9", nil }

	nc, err := l.Locate(context.Background(), true)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if nc.Interface != "unknown" || nc.LocalAddress.String() != "172.16.5.9" {
		t.Errorf("Locate() = %s %s, want unknown 172.16.5.9", nc.Interface, nc.LocalAddress)
	}
}

func TestLocateNotCapable(t *testing.T) {
	l := testLocator()
	l.interfaces = func(context.Context) (psnet.InterfaceStatList, error) {
		t.Fatal("interfaces must not be listed without raw access")
		return nil, nil
	}

	nc, err := l.Locate(context.Background(), false)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if nc.Interface != "unknown" || nc.Network.String() != "172.16.5.0/24" {
		t.Errorf("Locate() = %s %s, want unknown 172.16.5.0/24", nc.Interface, nc.Network)
	}
}

func TestLocateFailure(t *testing.T) {
	l := testLocator()
	l.lookupIP = func(context.Context, string) ([]net.IPAddr, error) {
		return nil, errors.New("no such host")
	}

	nc, err := l.Locate(context.Background(), false)
	if nc != nil {
		t.Errorf("Locate() returned context %+v on failure", nc)
	}
	var locErr *LocatorError
	if !errors.As(err, &locErr) {
		t.Fatalf("Locate() error = %v, want *LocatorError", err)
	}
	if !strings.Contains(err.Error(), "no such host") {
		t.Errorf("error %q does not carry the cause", err)
	}
}

func TestPickAddress(t *testing.T) {
	tests := []struct {
		name  string
		addrs []string
		want  string
	}{
		{name: "prefers non-loopback", addrs: []string{"127.0.1.1", "::1", "192.168.0.4"}, want: "192.168.0.4"},
		{name: "loopback only", addrs: []string{"::1", "127.0.1.1"}, want: "127.0.1.1"},
		{name: "ipv6 only", addrs: []string{"fe80::1"}, want: "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addrs []net.IPAddr
			for _, a := range tt.addrs {
				addrs = append(addrs, net.IPAddr{IP: net.ParseIP(a)})
			}
			if got := pickAddress(addrs).String(); got != tt.want {
				t.Errorf("pickAddress() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseRouteTable(t *testing.T) {
	table := `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
wlan0	00000000	0101A8C0	0003	0	0	600	00000000	0	0	0
eth0	00000000	0101A8C0	0003	0	0	100	00000000	0	0	0
eth0	0001A8C0	00000000	0001	0	0	100	00FFFFFF	0	0	0
docker0	00000000	010011AC	0002	0	0	0	00000000	0	0	0
`
	name, err := parseRouteTable(strings.NewReader(table))
	if err != nil {
		t.Fatalf("parseRouteTable() error = %v", err)
	}
	if name != "eth0" {
		t.Errorf("parseRouteTable() = %s, want eth0", name)
	}
}

func TestNewWiresSystemLookups(t *testing.T) {
	l := New()
	if l.interfaces == nil || l.defaultInterface == nil || l.outboundAddress == nil || l.hostname == nil || l.lookupIP == nil {
		t.Fatalf("New() left a lookup unset: %+v", l)
	}
	if _, err := l.interfaces(context.Background()); err != nil {
		t.Errorf("interfaces() error = %v", err)
	}
}
