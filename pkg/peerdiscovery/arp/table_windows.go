//go:build windows

package arp

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/projectdiscovery/lanscan/pkg/types"
)

// ReadTable reads the local ARP table on Windows using 'arp -a' command
func ReadTable() ([]types.Peer, error) {
	output, err := exec.Command("arp", "-a").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -a: %w", err)
	}
	return parseWindowsARP(bytes.NewReader(output))
}
