// Package classify assigns a coarse device type from vendor and open ports.
package classify

import (
	"strings"

	sliceutil "github.com/projectdiscovery/utils/slice"
)

// Device types. Every classified host carries exactly one of them.
const (
	RaspberryPi = "iot (raspberry-pi)"
	Mobile      = "phone/tablet"
	Computer    = "pc/server"
	IoT         = "iot"
	Unknown     = "unknown"
)

var (
	mobileVendors  = []string{"apple", "samsung"}
	mobilePorts    = []int{5353, 80}
	computerPorts  = []int{22, 3389, 139, 445}
	discoveryPorts = []int{1900, 5353}
)

// Classify applies the rules in order and returns the first match:
//
//  1. vendor mentions Raspberry                       -> iot (raspberry-pi)
//  2. vendor mentions Apple or Samsung, port 5353/80  -> phone/tablet
//  3. any of 22, 3389, 139, 445 open                  -> pc/server
//  4. 1900 or 5353 open                               -> iot
//  5. otherwise                                       -> unknown
//
// Vendor matching is case-insensitive; an empty vendor matches nothing.
func Classify(vendor string, ports []int) string {
	v := strings.ToLower(vendor)
	switch {
	case strings.Contains(v, "raspberry"):
		return RaspberryPi
	case containsAny(v, mobileVendors) && anyPort(ports, mobilePorts):
		return Mobile
	case anyPort(ports, computerPorts):
		return Computer
	case anyPort(ports, discoveryPorts):
		return IoT
	default:
		return Unknown
	}
}

func containsAny(s string, subs []string) bool {
	if s == "" {
		return false
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyPort(ports, wanted []int) bool {
	for _, p := range wanted {
		if sliceutil.Contains(ports, p) {
			return true
		}
	}
	return false
}
