package pingsweep

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/gologger"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const protocolICMP = 1

var echoPayload = []byte("lanscan-echo")

// icmpPinger sends echo requests through a per-probe ICMP socket. network is
// "udp4" for unprivileged datagram sockets or "ip4:icmp" for raw sockets.
type icmpPinger struct {
	network string
	id      int
	seq     atomic.Uint32
}

// newICMPPinger returns a pinger for the first ICMP socket type this process
// may open, or nil when neither is permitted.
func newICMPPinger() *icmpPinger {
	for _, network := range []string{"udp4", "ip4:icmp"} {
		conn, err := icmp.ListenPacket(network, "0.0.0.0")
		if err != nil {
			gologger.Debug().Msgf("pingsweep: %s icmp socket unavailable: %s", network, err)
			continue
		}
		_ = conn.Close()
		return &icmpPinger{network: network, id: os.Getpid() & 0xffff}
	}
	return nil
}

// Ping sends one echo request and waits for the matching reply.
func (p *icmpPinger) Ping(ctx context.Context, ip net.IP, timeout time.Duration) bool {
	conn, err := icmp.ListenPacket(p.network, "0.0.0.0")
	if err != nil {
		return false
	}
	defer func() {
		_ = conn.Close()
	}()

	seq := int(p.seq.Add(1) & 0xffff)
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return false
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if p.network == "udp4" {
		dst = &net.UDPAddr{IP: ip}
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return false
	}
	if _, err := conn.WriteTo(msgBytes, dst); err != nil {
		return false
	}

	reply := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			// deadline exceeded or socket error, no answer
			return false
		}
		if !sameIP(peer, ip) {
			continue
		}
		rm, err := icmp.ParseMessage(protocolICMP, reply[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		// datagram sockets get their ID rewritten by the kernel
		if p.network != "udp4" && echo.ID != p.id {
			continue
		}
		return true
	}
}

func sameIP(addr net.Addr, ip net.IP) bool {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP.Equal(ip)
	case *net.UDPAddr:
		return a.IP.Equal(ip)
	}
	return false
}

// NewPinger selects the echo method for this process: an ICMP socket when
// one can be opened, otherwise the platform ping command.
func NewPinger() Pinger {
	if icmpSupported {
		if p := newICMPPinger(); p != nil {
			gologger.Verbose().Msgf("pingsweep: using %s icmp socket", p.network)
			return p
		}
	}
	gologger.Verbose().Msgf("pingsweep: using ping command")
	return &execPinger{}
}
