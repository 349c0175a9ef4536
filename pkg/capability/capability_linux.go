//go:build linux

package capability

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// probe opens and binds an AF_PACKET socket, which needs CAP_NET_RAW.
func probe(iface string) error {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return fmt.Errorf("could not get interface %s: %w", iface, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ARP)))
	if err != nil {
		return fmt.Errorf("could not open packet socket: %w", err)
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ARP),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, addr); err != nil {
		return fmt.Errorf("could not bind packet socket: %w", err)
	}
	return nil
}

func htons(v uint16) uint16 {
	return v<<8 | v>>8
}
