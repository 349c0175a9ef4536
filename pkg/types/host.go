package types

// DiscoveredHost is one live host and its enrichment. Optional fields are
// empty when the corresponding signal was not available.
type DiscoveredHost struct {
	Address         string          `json:"ip"`
	HardwareAddress HardwareAddress `json:"mac,omitempty"`
	Hostname        string          `json:"hostname,omitempty"`
	Vendor          string          `json:"vendor,omitempty"`
	OpenPorts       []int           `json:"open_ports"`
	DeviceType      string          `json:"device_type"`
}
