// Package peerdiscovery selects and runs the host discovery strategy for a
// scan: broadcast ARP when raw frames can be sent on the interface, a ping
// sweep plus ARP cache lookup otherwise.
package peerdiscovery

import (
	"context"
	"fmt"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/broadcast"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/lanscan/pkg/types"
)

// Discoverer finds live hosts on the network described by a NetworkContext.
type Discoverer interface {
	Name() string
	Discover(ctx context.Context, nc *types.NetworkContext, timeout time.Duration) ([]types.Peer, error)
}

// Options tunes the ping sweep. Zero values select the sweep defaults.
type Options struct {
	PingTimeout time.Duration
	Workers     int
}

// Selection is the strategy chosen for one scan. Fallback is nil when the
// primary strategy is already the ping sweep.
type Selection struct {
	Primary  Discoverer
	Fallback Discoverer
}

// Select picks broadcast ARP with a ping sweep fallback when capable is set,
// the ping sweep alone otherwise.
func Select(capable bool, opts Options) *Selection {
	sweep := func() Discoverer {
		return pingsweep.New(pingsweep.Options{
			Workers:      opts.Workers,
			ProbeTimeout: opts.PingTimeout,
		})
	}
	if capable {
		return &Selection{Primary: broadcast.New(), Fallback: lazy{name: pingsweep.StrategyName, build: sweep}}
	}
	return &Selection{Primary: sweep()}
}

// Run discovers hosts with the primary strategy, switching to the fallback
// when the primary fails. The result holds at most one peer per address and
// is returned with the name of the strategy that produced it.
func (s *Selection) Run(ctx context.Context, nc *types.NetworkContext, timeout time.Duration) ([]types.Peer, string, error) {
	if s == nil || s.Primary == nil {
		return nil, "", fmt.Errorf("no discovery strategy selected")
	}

	strategy := s.Primary
	peers, err := strategy.Discover(ctx, nc, timeout)
	if err != nil && s.Fallback != nil && ctx.Err() == nil {
		gologger.Warning().Msgf("%s discovery failed, falling back to %s: %s", strategy.Name(), s.Fallback.Name(), err)
		strategy = s.Fallback
		peers, err = strategy.Discover(ctx, nc, timeout)
	}
	if err != nil {
		return nil, strategy.Name(), fmt.Errorf("%s discovery failed: %w", strategy.Name(), err)
	}
	return Dedupe(peers), strategy.Name(), nil
}

// Dedupe drops peers without an address and keeps the first peer seen for
// each address. A later duplicate only contributes a MAC the first lacked.
func Dedupe(peers []types.Peer) []types.Peer {
	index := make(map[string]int, len(peers))
	result := make([]types.Peer, 0, len(peers))
	for _, p := range peers {
		if p.IP == nil {
			continue
		}
		key := p.IP.String()
		if i, ok := index[key]; ok {
			if result[i].MAC == nil {
				result[i].MAC = p.MAC
			}
			continue
		}
		index[key] = len(result)
		result = append(result, p)
	}
	return result
}

// lazy defers construction of a discoverer until it is needed, so an unused
// fallback never probes for ICMP sockets.
type lazy struct {
	name  string
	build func() Discoverer
}

func (l lazy) Name() string {
	return l.name
}

func (l lazy) Discover(ctx context.Context, nc *types.NetworkContext, timeout time.Duration) ([]types.Peer, error) {
	return l.build().Discover(ctx, nc, timeout)
}
