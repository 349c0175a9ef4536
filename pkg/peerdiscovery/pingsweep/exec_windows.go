//go:build windows

package pingsweep

import (
	"bytes"
	"net"
	"strconv"
	"time"
)

// raw ICMP sockets need elevation on Windows and x/net does not support
// datagram ICMP there, so the ping command is always used
const icmpSupported = false

func pingCommand(ip net.IP, timeout time.Duration) (string, []string) {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return "ping", []string{"-n", "1", "-w", strconv.Itoa(ms), ip.String()}
}

// ping.exe exits 0 for "Destination host unreachable" relayed by a gateway,
// only a line carrying a TTL is a real echo reply
func replied(output []byte) bool {
	return bytes.Contains(bytes.ToUpper(output), []byte("TTL="))
}
