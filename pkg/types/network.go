package types

import "net"

// UnknownInterface is reported when the scan cannot tie the local address
// to a named interface.
const UnknownInterface = "unknown"

// NetworkContext describes where a scan runs. It is built once per scan and
// treated as read-only afterwards.
type NetworkContext struct {
	Interface    string
	LocalAddress net.IP
	Network      *net.IPNet
}

// Peer is a live host reported by a discovery strategy.
type Peer struct {
	IP  net.IP
	MAC net.HardwareAddr // nil when the strategy could not learn it
}
