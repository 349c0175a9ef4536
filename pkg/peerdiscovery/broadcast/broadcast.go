package broadcast

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/lanscan/pkg/types"
	mapsutil "github.com/projectdiscovery/utils/maps"
)

// StrategyName identifies the broadcast strategy in scan reports.
const StrategyName = "arp-broadcast"

const (
	// DefaultSnapLen is large enough for any ARP frame
	DefaultSnapLen = 1600
	// DefaultReadTimeout keeps the reader responsive to cancellation
	DefaultReadTimeout = 100 * time.Millisecond
)

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// Broadcaster discovers hosts by broadcasting ARP requests for every address
// of the local /24 and collecting the replies.
type Broadcaster struct {
	snapLen     int32
	readTimeout time.Duration
}

// New creates a broadcast ARP discoverer.
func New() *Broadcaster {
	return &Broadcaster{
		snapLen:     DefaultSnapLen,
		readTimeout: DefaultReadTimeout,
	}
}

// Name returns the strategy name.
func (b *Broadcaster) Name() string {
	return StrategyName
}

// Discover sends the request batch on nc.Interface and returns every host
// that replied before timeout. Hosts that stay silent are simply absent.
func (b *Broadcaster) Discover(ctx context.Context, nc *types.NetworkContext, timeout time.Duration) ([]types.Peer, error) {
	iface, err := net.InterfaceByName(nc.Interface)
	if err != nil {
		return nil, fmt.Errorf("could not get interface %s: %w", nc.Interface, err)
	}
	if len(iface.HardwareAddr) != 6 {
		return nil, fmt.Errorf("interface %s has no ethernet address", iface.Name)
	}
	localIP := nc.LocalAddress.To4()
	if localIP == nil {
		return nil, fmt.Errorf("interface %s has no IPv4 address", iface.Name)
	}

	targets, err := common.HostAddresses(nc.Network)
	if err != nil {
		return nil, err
	}

	frames := make([][]byte, 0, len(targets))
	for _, target := range targets {
		if target.Equal(localIP) {
			continue
		}
		frame, err := buildRequest(iface.HardwareAddr, localIP, target)
		if err != nil {
			return nil, fmt.Errorf("could not build ARP request for %s: %w", target, err)
		}
		frames = append(frames, frame)
	}

	handle, err := pcap.OpenLive(iface.Name, b.snapLen, false, b.readTimeout)
	if err != nil {
		return nil, fmt.Errorf("could not open %s for capture: %w", iface.Name, err)
	}
	defer handle.Close()

	// Only ARP traffic is of interest
	if err := handle.SetBPFFilter("arp"); err != nil {
		return nil, fmt.Errorf("could not set BPF filter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	peers := mapsutil.NewSyncLockMap[string, *types.Peer]()
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		b.readReplies(ctx, handle, nc, iface.HardwareAddr, peers)
	}()

	sent := 0
	for _, frame := range frames {
		if err := handle.WritePacketData(frame); err != nil {
			gologger.Debug().Msgf("broadcast: could not write request on %s: %s", iface.Name, err)
			continue
		}
		sent++
	}
	if sent == 0 && len(frames) > 0 {
		cancel()
		<-readerDone
		return nil, fmt.Errorf("could not write any ARP request on %s", iface.Name)
	}
	gologger.Verbose().Msgf("broadcast: sent %d requests on %s, waiting %s for replies", sent, iface.Name, timeout)

	<-readerDone

	var result []types.Peer
	_ = peers.Iterate(func(key string, peer *types.Peer) error {
		if peer != nil {
			result = append(result, *peer)
		}
		return nil
	})
	return result, nil
}

// readReplies consumes captured packets until ctx is done.
func (b *Broadcaster) readReplies(ctx context.Context, handle *pcap.Handle, nc *types.NetworkContext, ownMAC net.HardwareAddr, peers *mapsutil.SyncLockMap[string, *types.Peer]) {
	src := gopacket.NewPacketSource(handle, layers.LayerTypeEthernet)
	in := src.Packets()

	for {
		select {
		case <-ctx.Done():
			return
		case packet, ok := <-in:
			if !ok {
				return
			}
			peer, ok := parseReply(packet, nc, ownMAC)
			if !ok {
				continue
			}
			key := peer.IP.String()
			if _, exists := peers.Get(key); !exists {
				_ = peers.Set(key, &peer)
			}
		}
	}
}

// parseReply extracts the sender of an ARP reply coming from the scanned
// network. Requests, our own frames and foreign subnets are ignored.
func parseReply(packet gopacket.Packet, nc *types.NetworkContext, ownMAC net.HardwareAddr) (types.Peer, bool) {
	arpLayer := packet.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		return types.Peer{}, false
	}
	reply, ok := arpLayer.(*layers.ARP)
	if !ok || reply.Operation != layers.ARPReply {
		return types.Peer{}, false
	}

	ip := net.IP(reply.SourceProtAddress).To4()
	if ip == nil || !nc.Network.Contains(ip) || ip.Equal(nc.LocalAddress) {
		return types.Peer{}, false
	}

	mac := net.HardwareAddr(reply.SourceHwAddress)
	if len(mac) != 6 || mac.String() == ownMAC.String() {
		return types.Peer{}, false
	}

	// packet buffers are reused by the capture, keep our own copies
	return types.Peer{
		IP:  append(net.IP(nil), ip...),
		MAC: append(net.HardwareAddr(nil), mac...),
	}, true
}

// buildRequest serializes an Ethernet broadcast carrying an ARP who-has for dstIP.
func buildRequest(srcMAC net.HardwareAddr, srcIP, dstIP net.IP) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(srcIP.To4()),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(dstIP.To4()),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
