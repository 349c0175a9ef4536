package types

import "time"

// DefaultPorts is the candidate port list probed on every host.
var DefaultPorts = []int{22, 80, 139, 443, 445, 3389, 5353, 1900}

// ScanConfig holds the tunables of a single scan. It is passed by value and
// never modified once the scan starts.
type ScanConfig struct {
	Ports              []int         `yaml:"ports"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	BannerReadTimeout  time.Duration `yaml:"banner_read_timeout"`
	DiscoveryTimeout   time.Duration `yaml:"discovery_timeout"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	HostnameTimeout    time.Duration `yaml:"hostname_timeout"`
	MaxPortConcurrency int           `yaml:"max_port_concurrency"`
	MaxHostConcurrency int           `yaml:"max_host_concurrency"`
}

// DefaultScanConfig returns the configuration used when nothing is overridden.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Ports:              append([]int(nil), DefaultPorts...),
		ConnectTimeout:     time.Second,
		BannerReadTimeout:  500 * time.Millisecond,
		DiscoveryTimeout:   2 * time.Second,
		PingTimeout:        time.Second,
		HostnameTimeout:    2 * time.Second,
		MaxPortConcurrency: 4,
		MaxHostConcurrency: 32,
	}
}

// WithDefaults fills zero or negative fields from DefaultScanConfig and
// returns the result. The port list is copied so callers can't mutate it.
func (c ScanConfig) WithDefaults() ScanConfig {
	def := DefaultScanConfig()
	if len(c.Ports) == 0 {
		c.Ports = def.Ports
	} else {
		c.Ports = append([]int(nil), c.Ports...)
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.BannerReadTimeout <= 0 {
		c.BannerReadTimeout = def.BannerReadTimeout
	}
	if c.DiscoveryTimeout <= 0 {
		c.DiscoveryTimeout = def.DiscoveryTimeout
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = def.PingTimeout
	}
	if c.HostnameTimeout <= 0 {
		c.HostnameTimeout = def.HostnameTimeout
	}
	if c.MaxPortConcurrency < 1 {
		c.MaxPortConcurrency = def.MaxPortConcurrency
	}
	if c.MaxHostConcurrency < 1 {
		c.MaxHostConcurrency = def.MaxHostConcurrency
	}
	return c
}
