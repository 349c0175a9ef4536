// Package broadcast discovers hosts by writing one ARP who-has request per
// address of the local /24 on the bound interface and collecting the replies
// until the discovery timeout elapses. It needs raw layer-2 access
// (libpcap/npcap), so it is only selected when that access was confirmed.
package broadcast
