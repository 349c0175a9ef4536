package runner

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/projectdiscovery/lanscan/pkg/scanner"
	"github.com/projectdiscovery/lanscan/pkg/types"
	"github.com/tidwall/gjson"
)

type stubLocator struct{}

func (stubLocator) Locate(context.Context, bool) (*types.NetworkContext, error) {
	_, network, _ := net.ParseCIDR("192.168.1.0/24")
	return &types.NetworkContext{
		Interface:    "eth0",
		LocalAddress: net.ParseIP("192.168.1.2").To4(),
		Network:      network,
	}, nil
}

type stubDiscovery struct{}

func (stubDiscovery) Run(context.Context, *types.NetworkContext, time.Duration) ([]types.Peer, string, error) {
	mac, _ := net.ParseMAC("b8:27:eb:aa:bb:cc")
	return []types.Peer{{IP: net.ParseIP("192.168.1.50").To4(), MAC: mac}}, "ping-sweep", nil
}

type stubHostnames struct{}

func (stubHostnames) Resolve(context.Context, net.IP) (string, bool) { return "", false }

type stubProber struct{}

func (stubProber) Probe(context.Context, net.IP, []int) ([]int, error) { return []int{22}, nil }

func TestRunWritesReport(t *testing.T) {
	dir := t.TempDir()
	ouiPath := filepath.Join(dir, "oui.txt")
	if err := os.WriteFile(ouiPath, []byte("B8-27-EB   (hex)\t\tRaspberry Pi Foundation\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "report.json")

	options := &Options{OUIPath: ouiPath, Output: output, ForcePing: true}
	r, err := NewRunner(options)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	r.scannerOptions = []scanner.Option{
		scanner.WithLocator(stubLocator{}),
		scanner.WithDiscovery(func(bool) scanner.Discovery { return stubDiscovery{} }),
		scanner.WithHostnameResolver(stubHostnames{}),
		scanner.WithPortProber(stubProber{}),
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("could not read report: %v", err)
	}
	if !gjson.ValidBytes(data) {
		t.Fatalf("report is not valid json: %s", data)
	}
	report := gjson.ParseBytes(data)

	checks := map[string]string{
		"network":              "192.168.1.0/24",
		"interface":            "eth0",
		"strategy":             "ping-sweep",
		"hosts.#":              "1",
		"hosts.0.ip":           "192.168.1.50",
		"hosts.0.mac":          "b827ebaabbcc",
		"hosts.0.vendor":       "Raspberry Pi Foundation",
		"hosts.0.open_ports.0": "22",
		"hosts.0.device_type":  "iot (raspberry-pi)",
	}
	for path, want := range checks {
		if got := report.Get(path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if report.Get("scan_id").String() == "" {
		t.Error("report has no scan_id")
	}
	if report.Get("hosts.0.hostname").Exists() {
		t.Error("empty hostname should be omitted")
	}
}

func TestRunWithoutVendorTable(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "report.json")

	// an unreachable download leaves an empty table
	options := &Options{OUIPath: filepath.Join(dir, "missing", "oui.txt"), Output: output, ForcePing: true}
	r, err := NewRunner(options)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	r.scannerOptions = []scanner.Option{
		scanner.WithLocator(stubLocator{}),
		scanner.WithDiscovery(func(bool) scanner.Discovery { return stubDiscovery{} }),
		scanner.WithHostnameResolver(stubHostnames{}),
		scanner.WithPortProber(stubProber{}),
	}
	r.vendorURL = "http://127.0.0.1:1/oui.txt"

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("could not read report: %v", err)
	}
	host := gjson.GetBytes(data, "hosts.0")
	if host.Get("vendor").Exists() {
		t.Errorf("vendor = %s, want none", host.Get("vendor"))
	}
	if got := host.Get("device_type").String(); got != "pc/server" {
		t.Errorf("device_type = %q, want pc/server", got)
	}
}

func TestScanConfig(t *testing.T) {
	tests := []struct {
		name    string
		options *Options
		profile string
		check   func(t *testing.T, cfg types.ScanConfig)
		wantErr bool
	}{
		{
			name:    "defaults",
			options: &Options{},
			check: func(t *testing.T, cfg types.ScanConfig) {
				if len(cfg.Ports) != len(types.DefaultPorts) || cfg.MaxHostConcurrency != 32 {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
		{
			name:    "flag ports deduped in order",
			options: &Options{Ports: []string{"443", "22", "443", " 80 "}},
			check: func(t *testing.T, cfg types.ScanConfig) {
				if len(cfg.Ports) != 3 || cfg.Ports[0] != 443 || cfg.Ports[1] != 22 || cfg.Ports[2] != 80 {
					t.Errorf("Ports = %v, want [443 22 80]", cfg.Ports)
				}
			},
		},
		{
			name:    "invalid port",
			options: &Options{Ports: []string{"70000"}},
			wantErr: true,
		},
		{
			name:    "profile applies without flags",
			options: &Options{ConnectTimeout: time.Second},
			profile: "ports: [8080, 22]\nconnect_timeout: 3s\nmax_host_concurrency: 8\n",
			check: func(t *testing.T, cfg types.ScanConfig) {
				if cfg.ConnectTimeout != 3*time.Second || cfg.MaxHostConcurrency != 8 || len(cfg.Ports) != 2 {
					t.Errorf("cfg = %+v, want profile values", cfg)
				}
				if cfg.DiscoveryTimeout != 2*time.Second {
					t.Errorf("DiscoveryTimeout = %s, want default", cfg.DiscoveryTimeout)
				}
			},
		},
		{
			name: "flags override profile",
			options: &Options{
				ConnectTimeout: 5 * time.Second,
				explicit:       map[string]struct{}{"ct": {}},
			},
			profile: "connect_timeout: 3s\n",
			check: func(t *testing.T, cfg types.ScanConfig) {
				if cfg.ConnectTimeout != 5*time.Second {
					t.Errorf("ConnectTimeout = %s, want 5s", cfg.ConnectTimeout)
				}
			},
		},
		{
			name:    "profile with invalid port",
			options: &Options{},
			profile: "ports: [0]\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.profile != "" {
				path := filepath.Join(t.TempDir(), "profile.yaml")
				if err := os.WriteFile(path, []byte(tt.profile), 0o600); err != nil {
					t.Fatal(err)
				}
				tt.options.ConfigFile = path
			}
			cfg, err := tt.options.ScanConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ScanConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
