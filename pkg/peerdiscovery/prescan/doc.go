// Package prescan orders the hosts of a /24 so that the addresses most likely
// to be online are probed first. With a bounded worker pool this means
// gateways and early DHCP leases are answered before the long tail.
//
// Scores (0-100):
//   - 100: .1, .254 (routers/gateways)
//   - 90:  .2-.5, .250-.253 (reserved infrastructure)
//   - 80:  .6-.10 (early DHCP)
//   - 70:  .50, .100, .150 (common pool starts)
//   - 50:  .51-.99, .101-.149, .151-.200 (DHCP pool)
//   - 20:  everything else
//   - 0:   .0, .255 (never probed)
package prescan
