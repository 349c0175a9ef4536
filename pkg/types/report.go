package types

import "time"

// ScanReport is the final output of a scan. Hosts are in the order their
// enrichment completed, which is not stable across runs.
type ScanReport struct {
	ScanID       string           `json:"scan_id"`
	Interface    string           `json:"interface"`
	LocalAddress string           `json:"local_address"`
	Network      string           `json:"network"`
	Strategy     string           `json:"strategy"`
	StartedAt    time.Time        `json:"started_at"`
	Duration     string           `json:"duration"`
	Hosts        []DiscoveredHost `json:"hosts"`
}
