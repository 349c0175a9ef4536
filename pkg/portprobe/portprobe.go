// Package portprobe checks which TCP ports of a host accept connections.
package portprobe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/projectdiscovery/gologger"
	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	DefaultConnectTimeout = time.Second
	DefaultBannerTimeout  = 500 * time.Millisecond
	DefaultConcurrency    = 4
)

// DialFunc opens a connection, net.Dialer.DialContext by default.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a Prober. Zero values select the defaults.
type Options struct {
	ConnectTimeout time.Duration
	BannerTimeout  time.Duration
	Concurrency    int
	Dial           DialFunc
}

// Prober runs TCP connect probes against a single host at a time.
type Prober struct {
	connectTimeout time.Duration
	bannerTimeout  time.Duration
	concurrency    int
	dial           DialFunc
}

// New creates a Prober.
func New(opts Options) *Prober {
	p := &Prober{
		connectTimeout: opts.ConnectTimeout,
		bannerTimeout:  opts.BannerTimeout,
		concurrency:    opts.Concurrency,
		dial:           opts.Dial,
	}
	if p.connectTimeout <= 0 {
		p.connectTimeout = DefaultConnectTimeout
	}
	if p.bannerTimeout <= 0 {
		p.bannerTimeout = DefaultBannerTimeout
	}
	if p.concurrency < 1 {
		p.concurrency = DefaultConcurrency
	}
	if p.dial == nil {
		dialer := &net.Dialer{}
		p.dial = dialer.DialContext
	}
	return p
}

// Probe returns the ports of host that accepted a connection, in the order
// they appear in ports. Refused, unreachable and timed out ports are closed.
func (p *Prober) Probe(ctx context.Context, host net.IP, ports []int) ([]int, error) {
	if host == nil {
		return nil, fmt.Errorf("no host given")
	}
	if len(ports) == 0 {
		return []int{}, nil
	}

	awg, err := syncutil.New(syncutil.WithSize(p.concurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	// each worker owns exactly one slot
	open := make([]bool, len(ports))
	for i, port := range ports {
		if ctx.Err() != nil {
			break
		}
		awg.Add()
		go func(i, port int) {
			defer awg.Done()
			open[i] = p.probePort(ctx, host, port)
		}(i, port)
	}
	awg.Wait()

	result := make([]int, 0, len(ports))
	for i, port := range ports {
		if open[i] {
			result = append(result, port)
		}
	}
	return result, nil
}

func (p *Prober) probePort(ctx context.Context, host net.IP, port int) bool {
	address := net.JoinHostPort(host.String(), strconv.Itoa(port))

	dialCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	conn, err := p.dial(dialCtx, "tcp", address)
	if err != nil {
		gologger.Debug().Msgf("portprobe: %s closed: %s", address, err)
		return false
	}
	defer func() {
		_ = conn.Close()
	}()

	// banner content is not used; a read error or timeout still means open
	if err := conn.SetReadDeadline(time.Now().Add(p.bannerTimeout)); err == nil {
		buf := make([]byte, 256)
		_, _ = conn.Read(buf)
	}
	return true
}
