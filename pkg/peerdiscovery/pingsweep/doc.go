// Package pingsweep discovers live hosts without layer-2 access.
//
// Every host address of the local /24 gets a single ICMP echo, bounded by a
// per-probe timeout and a fixed number of workers. Probes are issued in
// prescan order so likely hosts answer first. Once the sweep completes the
// operating system's ARP cache is consulted to attach hardware addresses;
// hosts without a cache entry are reported without one.
//
// The echo is sent through, in order of preference:
//   - an unprivileged ICMP datagram socket (Linux ping_group_range, macOS)
//   - a raw ICMP socket (root / CAP_NET_RAW)
//   - the platform ping command
//
// The choice is made once when the Sweeper is created.
//
// Limitations:
//   - Hosts with ICMP disabled or firewalled will not respond
//   - Hosts the OS never resolved carry no hardware address
package pingsweep
