package arp

import (
	"bufio"
	"io"
	"net"
	"strings"

	"github.com/projectdiscovery/lanscan/pkg/types"
)

// parseProcNetARP parses the Linux /proc/net/arp format:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
func parseProcNetARP(r io.Reader) ([]types.Peer, error) {
	var peers []types.Peer
	scanner := bufio.NewScanner(r)

	// Skip header line
	if !scanner.Scan() {
		return peers, scanner.Err()
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}

		// Flags 0x0 means the entry never resolved
		if fields[2] == "0x0" {
			continue
		}
		if peer, ok := newPeer(fields[0], fields[3]); ok {
			peers = append(peers, peer)
		}
	}

	return peers, scanner.Err()
}

// parseBSDARP parses `arp -a` output on macOS and the BSDs:
//
//	? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]
func parseBSDARP(r io.Reader) ([]types.Peer, error) {
	var peers []types.Peer
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		ipStart := strings.Index(line, "(")
		ipEnd := strings.Index(line, ")")
		if ipStart == -1 || ipEnd == -1 || ipStart >= ipEnd {
			continue
		}
		ipStr := line[ipStart+1 : ipEnd]

		atIndex := strings.Index(line, " at ")
		if atIndex == -1 {
			continue
		}
		rest := strings.Fields(line[atIndex+4:])
		if len(rest) == 0 {
			continue
		}

		if peer, ok := newPeer(ipStr, padOctets(rest[0])); ok {
			peers = append(peers, peer)
		}
	}

	return peers, scanner.Err()
}

// padOctets restores the leading zeros macOS drops ("0:1a:2b:3:4:5").
func padOctets(mac string) string {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return mac
	}
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, ":")
}

// parseWindowsARP parses `arp -a` output on Windows:
//
//	Interface: 192.168.1.100 --- 0xa
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
func parseWindowsARP(r io.Reader) ([]types.Peer, error) {
	var peers []types.Peer
	scanner := bufio.NewScanner(r)

	inTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Interface:") {
			inTable = false
			continue
		}
		if strings.Contains(line, "Internet Address") && strings.Contains(line, "Physical Address") {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if peer, ok := newPeer(fields[0], fields[1]); ok {
			peers = append(peers, peer)
		}
	}

	return peers, scanner.Err()
}

// newPeer builds a peer from textual IP/MAC columns, skipping incomplete,
// broadcast and non-IPv4 entries.
func newPeer(ipStr, macStr string) (types.Peer, bool) {
	ip := net.ParseIP(ipStr).To4()
	if ip == nil {
		return types.Peer{}, false
	}

	hw := types.NormalizeHardwareAddress(macStr)
	if !hw.Valid() || hw == "000000000000" || hw == "ffffffffffff" {
		return types.Peer{}, false
	}

	// Windows prints dashes, which net.ParseMAC accepts as well
	mac, err := net.ParseMAC(strings.ReplaceAll(macStr, "-", ":"))
	if err != nil {
		return types.Peer{}, false
	}
	return types.Peer{IP: ip, MAC: mac}, true
}
