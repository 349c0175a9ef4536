package scanner

import (
	"context"
	"errors"
	"net"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/projectdiscovery/lanscan/pkg/classify"
	"github.com/projectdiscovery/lanscan/pkg/locator"
	"github.com/projectdiscovery/lanscan/pkg/oui"
	"github.com/projectdiscovery/lanscan/pkg/types"
)

type fakeLocator struct {
	nc  *types.NetworkContext
	err error
}

func (f fakeLocator) Locate(context.Context, bool) (*types.NetworkContext, error) {
	return f.nc, f.err
}

type fakeDiscovery struct {
	peers    []types.Peer
	strategy string
	err      error
}

func (f fakeDiscovery) Run(context.Context, *types.NetworkContext, time.Duration) ([]types.Peer, string, error) {
	return f.peers, f.strategy, f.err
}

type fakeHostnames map[string]string

func (f fakeHostnames) Resolve(_ context.Context, ip net.IP) (string, bool) {
	name, ok := f[ip.String()]
	return name, ok
}

type fakeProber map[string][]int

func (f fakeProber) Probe(_ context.Context, ip net.IP, _ []int) ([]int, error) {
	return f[ip.String()], nil
}

func homeNetwork() *types.NetworkContext {
	_, network, _ := net.ParseCIDR("192.168.1.0/24")
	return &types.NetworkContext{
		Interface:    "eth0",
		LocalAddress: net.ParseIP("192.168.1.2").To4(),
		Network:      network,
	}
}

func peer(ip, mac string) types.Peer {
	p := types.Peer{IP: net.ParseIP(ip).To4()}
	if mac != "" {
		p.MAC, _ = net.ParseMAC(mac)
	}
	return p
}

func newTestScanner(peers []types.Peer, opts ...Option) *Scanner {
	table := oui.NewTable(map[string]string{
		"b827eb": "Raspberry Pi Foundation",
		"000393": "Apple, Inc.",
	})
	base := []Option{
		WithLocator(fakeLocator{nc: homeNetwork()}),
		WithDiscovery(func(bool) Discovery {
			return fakeDiscovery{peers: peers, strategy: "arp-broadcast"}
		}),
		WithHostnameResolver(fakeHostnames{"192.168.1.50": "pi.lan"}),
		WithPortProber(fakeProber{
			"192.168.1.50": {22},
			"192.168.1.60": {5353},
			"192.168.1.70": {445},
		}),
	}
	return New(types.ScanConfig{}, table, append(base, opts...)...)
}

func TestRunScenarios(t *testing.T) {
	s := newTestScanner([]types.Peer{
		peer("192.168.1.50", "B8:27:EB:AA:BB:CC"),
		peer("192.168.1.60", "00:03:93:01:02:03"),
		peer("192.168.1.70", ""),
		peer("192.168.1.80", ""),
	})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Network != "192.168.1.0/24" || report.Interface != "eth0" || report.Strategy != "arp-broadcast" {
		t.Errorf("report header = %s %s %s", report.Network, report.Interface, report.Strategy)
	}
	if report.ScanID == "" {
		t.Error("report has no scan id")
	}

	byAddr := make(map[string]types.DiscoveredHost)
	for _, h := range report.Hosts {
		byAddr[h.Address] = h
	}
	if len(byAddr) != 4 {
		t.Fatalf("got %d hosts, want 4", len(byAddr))
	}

	tests := []struct {
		addr string
		want types.DiscoveredHost
	}{
		{addr: "192.168.1.50", want: types.DiscoveredHost{
			Address: "192.168.1.50", HardwareAddress: "b827ebaabbcc", Hostname: "pi.lan",
			Vendor: "Raspberry Pi Foundation", OpenPorts: []int{22}, DeviceType: classify.RaspberryPi,
		}},
		{addr: "192.168.1.60", want: types.DiscoveredHost{
			Address: "192.168.1.60", HardwareAddress: "000393010203",
			Vendor: "Apple, Inc.", OpenPorts: []int{5353}, DeviceType: classify.Mobile,
		}},
		{addr: "192.168.1.70", want: types.DiscoveredHost{
			Address: "192.168.1.70", OpenPorts: []int{445}, DeviceType: classify.Computer,
		}},
		{addr: "192.168.1.80", want: types.DiscoveredHost{
			Address: "192.168.1.80", OpenPorts: []int{}, DeviceType: classify.Unknown,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := byAddr[tt.addr]; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("host = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunDropsDuplicateAddresses(t *testing.T) {
	s := newTestScanner([]types.Peer{
		peer("192.168.1.50", "B8:27:EB:AA:BB:CC"),
		peer("192.168.1.50", "B8:27:EB:AA:BB:CC"),
		peer("192.168.1.70", ""),
	})

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Hosts) != 2 {
		t.Errorf("got %d hosts, want 2", len(report.Hosts))
	}
}

func TestRunLocatorFailure(t *testing.T) {
	s := newTestScanner(nil, WithLocator(fakeLocator{
		err: &locator.LocatorError{Reason: "no local IPv4 address", Err: errors.New("no such host")},
	}))

	report, err := s.Run(context.Background())
	if report != nil {
		t.Errorf("Run() returned a report on locator failure")
	}
	var locErr *locator.LocatorError
	if !errors.As(err, &locErr) {
		t.Errorf("Run() error = %v, want *LocatorError", err)
	}
}

func TestRunDiscoveryFailure(t *testing.T) {
	s := newTestScanner(nil, WithDiscovery(func(bool) Discovery {
		return fakeDiscovery{strategy: "ping-sweep", err: errors.New("no icmp")}
	}))

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Hosts) != 0 {
		t.Errorf("got %d hosts, want none", len(report.Hosts))
	}
}

func TestRunCapabilityCheckedOnce(t *testing.T) {
	var mu sync.Mutex
	var checked []string
	var selected []bool

	s := newTestScanner(nil,
		WithCapability(func(iface string) bool {
			mu.Lock()
			defer mu.Unlock()
			checked = append(checked, iface)
			return true
		}),
		WithDiscovery(func(capable bool) Discovery {
			selected = append(selected, capable)
			return fakeDiscovery{strategy: "arp-broadcast"}
		}),
	)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(checked, []string{"eth0"}) {
		t.Errorf("capability checked for %v, want [eth0]", checked)
	}
	if !reflect.DeepEqual(selected, []bool{true}) {
		t.Errorf("strategy selected with %v, want [true]", selected)
	}
}

func TestRunUnknownInterfaceIsNotCapable(t *testing.T) {
	nc := homeNetwork()
	nc.Interface = types.UnknownInterface

	var selected []bool
	s := newTestScanner(nil,
		WithLocator(fakeLocator{nc: nc}),
		WithCapability(func(string) bool {
			t.Error("capability checked for unknown interface")
			return true
		}),
		WithDiscovery(func(capable bool) Discovery {
			selected = append(selected, capable)
			return fakeDiscovery{strategy: "ping-sweep"}
		}),
	)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(selected, []bool{false}) {
		t.Errorf("strategy selected with %v, want [false]", selected)
	}
}

type countingProber struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (c *countingProber) Probe(context.Context, net.IP, []int) ([]int, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	return nil, nil
}

func TestRunHostConcurrencyBound(t *testing.T) {
	var peers []types.Peer
	for i := 1; i <= 40; i++ {
		peers = append(peers, types.Peer{IP: net.IPv4(10, 0, 0, byte(i)).To4()})
	}
	prober := &countingProber{}
	s := New(types.ScanConfig{MaxHostConcurrency: 3}, nil,
		WithLocator(fakeLocator{nc: homeNetwork()}),
		WithDiscovery(func(bool) Discovery { return fakeDiscovery{peers: peers, strategy: "ping-sweep"} }),
		WithHostnameResolver(fakeHostnames{}),
		WithPortProber(prober),
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Hosts) != 40 {
		t.Errorf("got %d hosts, want 40", len(report.Hosts))
	}
	if prober.peak > 3 {
		t.Errorf("peak hosts in flight = %d, want <= 3", prober.peak)
	}
	for _, h := range report.Hosts {
		if h.OpenPorts == nil || h.DeviceType != classify.Unknown {
			t.Errorf("host %s = %+v", h.Address, h)
		}
	}
}

func TestRunHostnameMissNotCarriedOver(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	lookup := func(context.Context, string) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, errors.New("server failure")
		}
		return []string{"pi.lan."}, nil
	}
	s := newTestScanner([]types.Peer{peer("192.168.1.50", "B8:27:EB:AA:BB:CC")}, WithHostnameLookup(lookup))

	first, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Hosts[0].Hostname != "" {
		t.Errorf("first scan hostname = %q, want none", first.Hosts[0].Hostname)
	}

	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Hosts[0].Hostname != "pi.lan" {
		t.Errorf("second scan hostname = %q, want pi.lan", second.Hosts[0].Hostname)
	}
	if calls != 2 {
		t.Errorf("lookup called %d times, want 2", calls)
	}
}
