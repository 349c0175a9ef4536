//go:build !linux

package capability

import (
	"fmt"

	"github.com/google/gopacket/pcap"
)

// probe opens a pcap handle on iface, which fails without capture rights
// (BPF device access on macOS, Npcap on Windows).
func probe(iface string) error {
	handle, err := pcap.OpenLive(iface, 64, false, pcap.BlockForever)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", iface, err)
	}
	handle.Close()
	return nil
}
