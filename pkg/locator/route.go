package locator

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	osutils "github.com/projectdiscovery/utils/os"
)

const (
	procNetRoute = "/proc/net/route"
	routeFlagUp  = 0x1
)

// defaultRouteInterface returns the interface of the lowest-metric default
// route on Linux, or "" elsewhere.
func defaultRouteInterface() (string, error) {
	if !osutils.IsLinux() {
		return "", nil
	}
	f, err := os.Open(procNetRoute)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	return parseRouteTable(f)
}

// parseRouteTable reads the /proc/net/route format:
//
//	Iface Destination Gateway Flags RefCnt Use Metric Mask ...
func parseRouteTable(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	best, bestMetric := "", -1
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 8 || fields[1] != "00000000" || fields[7] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(fields[3], 16, 32)
		if err != nil || flags&routeFlagUp == 0 {
			continue
		}
		metric, err := strconv.Atoi(fields[6])
		if err != nil {
			continue
		}
		if bestMetric < 0 || metric < bestMetric {
			best, bestMetric = fields[0], metric
		}
	}
	return best, scanner.Err()
}
