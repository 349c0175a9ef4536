// Package scanner runs a complete scan of the local /24: locate the network,
// discover live hosts, enrich each host and classify it.
package scanner

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/classify"
	"github.com/projectdiscovery/lanscan/pkg/hostname"
	"github.com/projectdiscovery/lanscan/pkg/locator"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery"
	"github.com/projectdiscovery/lanscan/pkg/portprobe"
	"github.com/projectdiscovery/lanscan/pkg/types"
	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/rs/xid"
)

// NetworkLocator finds the network to scan.
type NetworkLocator interface {
	Locate(ctx context.Context, capable bool) (*types.NetworkContext, error)
}

// Discovery finds live hosts and names the strategy it used.
type Discovery interface {
	Run(ctx context.Context, nc *types.NetworkContext, timeout time.Duration) ([]types.Peer, string, error)
}

// HostnameResolver returns the name of an address, if any.
type HostnameResolver interface {
	Resolve(ctx context.Context, ip net.IP) (string, bool)
}

// PortProber returns the open subset of ports in their given order.
type PortProber interface {
	Probe(ctx context.Context, host net.IP, ports []int) ([]int, error)
}

// VendorResolver maps a hardware address to its vendor.
type VendorResolver interface {
	Resolve(hw types.HardwareAddress) (string, bool)
}

// Option overrides a collaborator of the Scanner.
type Option func(*Scanner)

// WithCapability sets the raw frame capability check. It is called at most
// once per scan with the located interface. Without it every scan uses the
// ping sweep.
func WithCapability(fn func(iface string) bool) Option {
	return func(s *Scanner) { s.capability = fn }
}

func WithLocator(l NetworkLocator) Option {
	return func(s *Scanner) { s.locator = l }
}

// WithDiscovery replaces strategy selection.
func WithDiscovery(fn func(capable bool) Discovery) Option {
	return func(s *Scanner) { s.selectDiscovery = fn }
}

// WithHostnameResolver shares r across every scan of the Scanner.
func WithHostnameResolver(r HostnameResolver) Option {
	return func(s *Scanner) {
		s.newHostnames = func() HostnameResolver { return r }
	}
}

// WithHostnameLookup keeps the per-scan caching resolver but replaces the
// reverse lookup it performs.
func WithHostnameLookup(lookup hostname.LookupFunc) Option {
	return func(s *Scanner) {
		s.newHostnames = func() HostnameResolver {
			return hostname.New(s.config.HostnameTimeout, lookup)
		}
	}
}

func WithPortProber(p PortProber) Option {
	return func(s *Scanner) { s.prober = p }
}

// Scanner orchestrates a scan. A Scanner may run any number of scans, one
// at a time or concurrently; it holds no per-scan state. Each scan gets its
// own hostname cache.
type Scanner struct {
	config          types.ScanConfig
	vendors         VendorResolver
	capability      func(iface string) bool
	locator         NetworkLocator
	selectDiscovery func(capable bool) Discovery
	newHostnames    func() HostnameResolver
	prober          PortProber
}

// New creates a Scanner from cfg and a vendor table. Zero fields of cfg are
// replaced by their defaults.
func New(cfg types.ScanConfig, vendors VendorResolver, opts ...Option) *Scanner {
	cfg = cfg.WithDefaults()
	s := &Scanner{
		config:  cfg,
		vendors: vendors,
		locator: locator.New(),
		selectDiscovery: func(capable bool) Discovery {
			return peerdiscovery.Select(capable, peerdiscovery.Options{
				PingTimeout: cfg.PingTimeout,
				Workers:     cfg.MaxHostConcurrency,
			})
		},
		newHostnames: func() HostnameResolver {
			return hostname.New(cfg.HostnameTimeout, nil)
		},
		prober: portprobe.New(portprobe.Options{
			ConnectTimeout: cfg.ConnectTimeout,
			BannerTimeout:  cfg.BannerReadTimeout,
			Concurrency:    cfg.MaxPortConcurrency,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one scan. The only error is a *locator.LocatorError (or a
// setup failure before any host is touched); every later failure leaves the
// affected fields empty.
func (s *Scanner) Run(ctx context.Context) (*types.ScanReport, error) {
	started := time.Now()
	scanID := xid.New().String()

	nc, err := s.locator.Locate(ctx, s.capability != nil)
	if err != nil {
		return nil, err
	}

	capable := false
	if s.capability != nil && nc.Interface != types.UnknownInterface {
		capable = s.capability(nc.Interface)
	}
	gologger.Info().Msgf("Scanning %s from %s on %s", nc.Network, nc.LocalAddress, nc.Interface)

	peers, strategy, err := s.selectDiscovery(capable).Run(ctx, nc, s.config.DiscoveryTimeout)
	if err != nil {
		gologger.Warning().Msgf("Host discovery failed: %s", err)
		peers = nil
	}
	gologger.Info().Msgf("Discovered %d hosts using %s", len(peers), strategy)

	hosts, err := s.enrich(ctx, peers, s.newHostnames())
	if err != nil {
		return nil, err
	}

	report := &types.ScanReport{
		ScanID:       scanID,
		Interface:    nc.Interface,
		LocalAddress: nc.LocalAddress.String(),
		Network:      nc.Network.String(),
		Strategy:     strategy,
		StartedAt:    started.UTC(),
		Duration:     time.Since(started).Round(time.Millisecond).String(),
		Hosts:        hosts,
	}
	if ctx.Err() != nil {
		gologger.Warning().Msgf("Scan %s interrupted, reporting %d hosts", scanID, len(hosts))
	}
	return report, nil
}

// enrich runs per-host enrichment with at most MaxHostConcurrency hosts in
// flight. Completed hosts are collected by a single goroutine in completion
// order; a repeated address is dropped.
func (s *Scanner) enrich(ctx context.Context, peers []types.Peer, hostnames HostnameResolver) ([]types.DiscoveredHost, error) {
	awg, err := syncutil.New(syncutil.WithSize(s.config.MaxHostConcurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	results := make(chan types.DiscoveredHost)
	collected := make(chan []types.DiscoveredHost, 1)
	go func() {
		seen := make(map[string]struct{})
		hosts := make([]types.DiscoveredHost, 0, len(peers))
		for host := range results {
			if _, dup := seen[host.Address]; dup {
				gologger.Debug().Msgf("Dropping duplicate host %s", host.Address)
				continue
			}
			seen[host.Address] = struct{}{}
			hosts = append(hosts, host)
		}
		collected <- hosts
	}()

	for _, peer := range peers {
		if peer.IP == nil {
			continue
		}
		awg.Add()
		go func(peer types.Peer) {
			defer awg.Done()
			results <- s.enrichHost(ctx, peer, hostnames)
		}(peer)
	}
	awg.Wait()
	close(results)

	return <-collected, nil
}

func (s *Scanner) enrichHost(ctx context.Context, peer types.Peer, hostnames HostnameResolver) types.DiscoveredHost {
	host := types.DiscoveredHost{
		Address:   peer.IP.String(),
		OpenPorts: []int{},
	}
	if hw := types.FromHardwareAddr(peer.MAC); hw.Valid() {
		host.HardwareAddress = hw
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if name, ok := hostnames.Resolve(ctx, peer.IP); ok {
			host.Hostname = name
		}
	}()
	go func() {
		defer wg.Done()
		ports, err := s.prober.Probe(ctx, peer.IP, s.config.Ports)
		if err != nil {
			gologger.Debug().Msgf("Could not probe %s: %s", host.Address, err)
			return
		}
		if ports != nil {
			host.OpenPorts = ports
		}
	}()

	if s.vendors != nil {
		if vendor, ok := s.vendors.Resolve(host.HardwareAddress); ok {
			host.Vendor = vendor
		}
	}
	wg.Wait()

	host.DeviceType = classify.Classify(host.Vendor, host.OpenPorts)
	gologger.Verbose().Msgf("%s mac=%s vendor=%q hostname=%q ports=%v type=%s",
		host.Address, host.HardwareAddress, host.Vendor, host.Hostname, host.OpenPorts, host.DeviceType)
	return host
}
