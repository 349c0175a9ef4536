// Package hostname performs bounded reverse DNS lookups.
package hostname

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
)

const (
	DefaultTimeout   = 2 * time.Second
	DefaultCacheSize = 1024
	// DefaultCacheTTL keeps answers for roughly one scan cycle
	DefaultCacheTTL = 10 * time.Minute
)

// LookupFunc returns the names for an address, net.Resolver.LookupAddr by
// default.
type LookupFunc func(ctx context.Context, addr string) ([]string, error)

type answer struct {
	name string
	ok   bool
}

// Resolver maps addresses to names. Failures of any kind are reported as no
// name.
type Resolver struct {
	timeout time.Duration
	lookup  LookupFunc
	cache   gcache.Cache[string, answer]
}

// New creates a Resolver. A nil lookup uses the system resolver.
func New(timeout time.Duration, lookup LookupFunc) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if lookup == nil {
		lookup = net.DefaultResolver.LookupAddr
	}
	return &Resolver{
		timeout: timeout,
		lookup:  lookup,
		cache: gcache.New[string, answer](DefaultCacheSize).
			LRU().
			Expiration(DefaultCacheTTL).
			Build(),
	}
}

// Resolve returns the first name of ip without its trailing dot.
func (r *Resolver) Resolve(ctx context.Context, ip net.IP) (string, bool) {
	if ip == nil {
		return "", false
	}
	key := ip.String()
	if cached, err := r.cache.Get(key); err == nil {
		return cached.name, cached.ok
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := answer{}
	names, err := r.lookup(ctx, key)
	if err != nil {
		gologger.Debug().Msgf("hostname: no name for %s: %s", key, err)
	} else {
		for _, name := range names {
			if name = strings.TrimSuffix(name, "."); name != "" {
				res = answer{name: name, ok: true}
				break
			}
		}
	}

	// a lookup cut short by the caller says nothing about the address
	if ctx.Err() == nil || res.ok {
		_ = r.cache.Set(key, res)
	}
	return res.name, res.ok
}
