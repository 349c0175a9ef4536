// Package arp reads the operating system's neighbor cache, which the ping
// sweep consults to attach hardware addresses to hosts that answered. It has
// no capture dependencies and works without raw socket access.
package arp
