package runner

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/lanscan/pkg/types"
	"github.com/projectdiscovery/lanscan/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
	sliceutil "github.com/projectdiscovery/utils/slice"
	"gopkg.in/yaml.v3"
)

var (
	PortsEnv     = envutil.GetEnvOrDefault("LANSCAN_PORTS", "")
	OUIPathEnv   = envutil.GetEnvOrDefault("LANSCAN_OUI_PATH", "")
	OutputEnv    = envutil.GetEnvOrDefault("LANSCAN_OUTPUT", "")
	ForcePingEnv = envutil.GetEnvOrDefault("LANSCAN_FORCE_PING", "")
)

// Options contains the configuration options for a scan.
type Options struct {
	ConfigFile string
	Output     string

	Ports            goflags.StringSlice
	ConnectTimeout   time.Duration
	BannerTimeout    time.Duration
	DiscoveryTimeout time.Duration
	PingTimeout      time.Duration
	HostnameTimeout  time.Duration
	PortConcurrency  int
	HostConcurrency  int
	ForcePing        bool

	OUIPath   string
	OUIUpdate bool

	Verbose bool
	Debug   bool
	Silent  bool
	NoColor bool
	Version bool

	// flags given on the command line, by long or short name
	explicit map[string]struct{}
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	def := types.DefaultScanConfig()

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`lanscan discovers and fingerprints the hosts of the local /24 network`)

	var defaultPorts []string
	if PortsEnv != "" {
		defaultPorts = strings.Split(PortsEnv, ",")
	}

	flagSet.CreateGroup("scan", "Scan",
		flagSet.StringSliceVarP(&options.Ports, "ports", "p", defaultPorts, "ports to probe on every host (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.BoolVarP(&options.ForcePing, "force-ping", "fp", isTrue(ForcePingEnv), "skip the raw frame check and always use the ping sweep"),
		flagSet.IntVarP(&options.HostConcurrency, "host-concurrency", "hc", def.MaxHostConcurrency, "maximum number of hosts probed in parallel"),
		flagSet.IntVarP(&options.PortConcurrency, "port-concurrency", "pc", def.MaxPortConcurrency, "maximum number of ports probed in parallel per host"),
	)

	flagSet.CreateGroup("timeouts", "Timeouts",
		flagSet.DurationVarP(&options.ConnectTimeout, "connect-timeout", "ct", def.ConnectTimeout, "tcp connect timeout"),
		flagSet.DurationVarP(&options.BannerTimeout, "banner-timeout", "bt", def.BannerReadTimeout, "banner read timeout after connect"),
		flagSet.DurationVarP(&options.DiscoveryTimeout, "discovery-timeout", "dt", def.DiscoveryTimeout, "time to wait for discovery replies"),
		flagSet.DurationVarP(&options.PingTimeout, "ping-timeout", "pt", def.PingTimeout, "timeout of a single ping"),
		flagSet.DurationVarP(&options.HostnameTimeout, "hostname-timeout", "ht", def.HostnameTimeout, "reverse lookup timeout"),
	)

	flagSet.CreateGroup("vendor", "Vendor",
		flagSet.StringVar(&options.OUIPath, "oui", OUIPathEnv, "vendor table location (default: user cache dir)"),
		flagSet.BoolVarP(&options.OUIUpdate, "oui-update", "ou", false, "download the vendor table even if cached"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", OutputEnv, "file to write the json report to (default: stdout)"),
		flagSet.StringVar(&options.ConfigFile, "config", "", "yaml scan profile, flags take precedence"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only the report"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.explicit = make(map[string]struct{})
	flagSet.CommandLine.Visit(func(f *flag.Flag) {
		options.explicit[f.Name] = struct{}{}
	})

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if options.OUIPath == "" {
		options.OUIPath = defaultOUIPath()
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) isSet(names ...string) bool {
	for _, name := range names {
		if _, ok := options.explicit[name]; ok {
			return true
		}
	}
	return false
}

// ScanConfig merges built-in defaults, the optional yaml profile and the
// command line, in increasing order of precedence. Without a profile every
// flag value applies, defaults included.
func (options *Options) ScanConfig() (types.ScanConfig, error) {
	cfg := types.DefaultScanConfig()
	if options.ConfigFile != "" {
		profile, err := loadProfile(options.ConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg = profile.WithDefaults()
	}
	override := func(names ...string) bool {
		return options.ConfigFile == "" || options.isSet(names...)
	}

	if len(options.Ports) > 0 && override("ports", "p") {
		ports, err := parsePorts(options.Ports)
		if err != nil {
			return cfg, err
		}
		cfg.Ports = ports
	}
	if override("connect-timeout", "ct") {
		cfg.ConnectTimeout = options.ConnectTimeout
	}
	if override("banner-timeout", "bt") {
		cfg.BannerReadTimeout = options.BannerTimeout
	}
	if override("discovery-timeout", "dt") {
		cfg.DiscoveryTimeout = options.DiscoveryTimeout
	}
	if override("ping-timeout", "pt") {
		cfg.PingTimeout = options.PingTimeout
	}
	if override("hostname-timeout", "ht") {
		cfg.HostnameTimeout = options.HostnameTimeout
	}
	if override("port-concurrency", "pc") {
		cfg.MaxPortConcurrency = options.PortConcurrency
	}
	if override("host-concurrency", "hc") {
		cfg.MaxHostConcurrency = options.HostConcurrency
	}
	return cfg.WithDefaults(), nil
}

func loadProfile(location string) (types.ScanConfig, error) {
	var cfg types.ScanConfig
	if !fileutil.FileExists(location) {
		return cfg, fmt.Errorf("scan profile %s does not exist", location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return cfg, fmt.Errorf("could not read scan profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse scan profile %s: %w", location, err)
	}
	for _, port := range cfg.Ports {
		if port < 1 || port > 65535 {
			return cfg, fmt.Errorf("invalid port %d in scan profile", port)
		}
	}
	cfg.Ports = sliceutil.Dedupe(cfg.Ports)
	return cfg, nil
}

// parsePorts converts port strings to numbers, keeping the first occurrence
// of each port in its original position.
func parsePorts(values []string) ([]int, error) {
	ports := make([]int, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid port %q", value)
		}
		ports = append(ports, port)
	}
	return sliceutil.Dedupe(ports), nil
}

func defaultOUIPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lanscan", "oui.txt")
}

func isTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
