package pingsweep

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/lanscan/pkg/types"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
)

// StrategyName identifies the ping sweep in scan reports.
const StrategyName = "ping-sweep"

const (
	DefaultWorkers      = 32
	DefaultProbeTimeout = time.Second
)

// Pinger answers whether ip replied to a single echo within timeout.
type Pinger interface {
	Ping(ctx context.Context, ip net.IP, timeout time.Duration) bool
}

// Options configures a Sweeper. Zero values select the defaults.
type Options struct {
	Workers      int
	ProbeTimeout time.Duration
	Pinger       Pinger
	// NeighborTable returns the OS ARP cache, arp.ReadTable by default
	NeighborTable func() ([]types.Peer, error)
}

// Sweeper is the ping-sweep discovery strategy.
type Sweeper struct {
	workers       int
	probeTimeout  time.Duration
	pinger        Pinger
	neighborTable func() ([]types.Peer, error)
}

// New creates a Sweeper. When no Pinger is given the best available echo
// method is picked here, once.
func New(opts Options) *Sweeper {
	s := &Sweeper{
		workers:       opts.Workers,
		probeTimeout:  opts.ProbeTimeout,
		pinger:        opts.Pinger,
		neighborTable: opts.NeighborTable,
	}
	if s.workers < 1 {
		s.workers = DefaultWorkers
	}
	if s.probeTimeout <= 0 {
		s.probeTimeout = DefaultProbeTimeout
	}
	if s.pinger == nil {
		s.pinger = NewPinger()
	}
	if s.neighborTable == nil {
		s.neighborTable = arp.ReadTable
	}
	return s
}

// Name returns the strategy name.
func (s *Sweeper) Name() string {
	return StrategyName
}

// Discover pings every host of nc.Network and returns the ones that answered.
// The sweep itself is bounded by the per-probe timeout; discoveryTimeout
// bounds the wait for the neighbor table.
func (s *Sweeper) Discover(ctx context.Context, nc *types.NetworkContext, discoveryTimeout time.Duration) ([]types.Peer, error) {
	hosts, err := common.HostAddresses(nc.Network)
	if err != nil {
		return nil, err
	}
	targets := prescan.Order(hosts, nc.Network)

	awg, err := syncutil.New(syncutil.WithSize(s.workers))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	live := mapsutil.NewSyncLockMap[string, *types.Peer]()
	for _, ip := range targets {
		if ctx.Err() != nil {
			break
		}
		if ip.Equal(nc.LocalAddress) {
			continue
		}

		awg.Add()
		go func(target net.IP) {
			defer awg.Done()
			if s.pinger.Ping(ctx, target, s.probeTimeout) {
				_ = live.Set(target.String(), &types.Peer{IP: target})
			}
		}(ip)
	}
	awg.Wait()

	macs := s.readNeighbors(ctx, discoveryTimeout)

	var peers []types.Peer
	_ = live.Iterate(func(key string, peer *types.Peer) error {
		peers = append(peers, types.Peer{IP: peer.IP, MAC: macs[key]})
		return nil
	})
	gologger.Verbose().Msgf("pingsweep: %d of %d hosts answered on %s", len(peers), len(targets), nc.Network)
	return peers, nil
}

// readNeighbors returns the ARP cache keyed by address. A missing or
// unreadable cache only means no hardware addresses.
func (s *Sweeper) readNeighbors(ctx context.Context, timeout time.Duration) map[string]net.HardwareAddr {
	type tableResult struct {
		peers []types.Peer
		err   error
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan tableResult, 1)
	go func() {
		peers, err := s.neighborTable()
		ch <- tableResult{peers: peers, err: err}
	}()

	macs := make(map[string]net.HardwareAddr)
	select {
	case <-ctx.Done():
		gologger.Debug().Msgf("pingsweep: neighbor table not read in time")
	case res := <-ch:
		if res.err != nil {
			gologger.Debug().Msgf("pingsweep: could not read neighbor table: %s", res.err)
			break
		}
		for _, peer := range res.peers {
			macs[peer.IP.String()] = peer.MAC
		}
	}
	return macs
}
