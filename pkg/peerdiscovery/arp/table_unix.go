//go:build !windows

package arp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/projectdiscovery/lanscan/pkg/types"
	osutils "github.com/projectdiscovery/utils/os"
)

// ReadTable reads the local ARP table (Linux and macOS)
func ReadTable() ([]types.Peer, error) {
	if osutils.IsLinux() {
		return readLinuxTable()
	}
	return readBSDTable()
}

// readLinuxTable reads ARP table from /proc/net/arp
func readLinuxTable() ([]types.Peer, error) {
	f, err := os.Open("/proc/net/arp")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return parseProcNetARP(f)
}

// readBSDTable reads ARP table using 'arp -an'
func readBSDTable() ([]types.Peer, error) {
	output, err := exec.Command("arp", "-an").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -an: %w", err)
	}
	return parseBSDARP(bytes.NewReader(output))
}
