// Package capability answers whether this process may send raw layer-2
// frames on an interface. The answer selects the discovery strategy and is
// computed once per scan.
package capability

import "github.com/projectdiscovery/gologger"

// CanSendRawFrames reports whether raw frames can be sent on iface. Any
// failure to find out counts as no.
func CanSendRawFrames(iface string) bool {
	if iface == "" {
		return false
	}
	err := probe(iface)
	if err != nil {
		gologger.Verbose().Msgf("No raw frame access on %s: %s", iface, err)
		return false
	}
	return true
}
