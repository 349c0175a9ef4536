//go:build !windows

package pingsweep

import (
	"net"
	"strconv"
	"time"

	osutils "github.com/projectdiscovery/utils/os"
)

const icmpSupported = true

func pingCommand(ip net.IP, timeout time.Duration) (string, []string) {
	secs := int(timeout.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	if osutils.IsOSX() {
		// -t is the overall timeout in seconds on macOS, -W is in milliseconds
		return "ping", []string{"-c", "1", "-t", strconv.Itoa(secs), ip.String()}
	}
	return "ping", []string{"-c", "1", "-W", strconv.Itoa(secs), ip.String()}
}

// exit status 0 already means an echo reply was received
func replied(output []byte) bool {
	return true
}
