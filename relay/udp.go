package relay

import (
	"fmt"
	"math/rand"
	"net"
	"net/url"
	"strconv"
	"sync/atomic"
)

// RTPSink sends access units as RTP over UDP.
type RTPSink struct {
	conn       net.Conn
	packetizer *Packetizer
	packets    atomic.Uint64
	bytes      atomic.Uint64
}

// DefaultPayloadType is the dynamic payload type used for H.264.
const DefaultPayloadType = 96

// NewRTPSink dials addr over UDP. A zero ssrc picks a random one.
func NewRTPSink(addr string, ssrc uint32, payloadType uint8, mtu int) (*RTPSink, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("relay: dial rtp %s: %w", addr, err)
	}
	if ssrc == 0 {
		ssrc = rand.Uint32()
	}
	return &RTPSink{
		conn:       conn,
		packetizer: NewPacketizer(ssrc, payloadType, mtu),
	}, nil
}

func (s *RTPSink) Name() string { return "rtp://" + s.conn.RemoteAddr().String() }

// WriteUnit packetizes u and sends each packet in its own datagram.
func (s *RTPSink) WriteUnit(u *AccessUnit) error {
	pkts, err := s.packetizer.PacketizeToBytes(u)
	if err != nil {
		return err
	}
	for _, b := range pkts {
		if _, err := s.conn.Write(b); err != nil {
			return fmt.Errorf("relay: write rtp: %w", err)
		}
		s.packets.Add(1)
		s.bytes.Add(uint64(len(b)))
	}
	return nil
}

// Stats returns the packets and bytes sent so far.
func (s *RTPSink) Stats() (packets, bytes uint64) {
	return s.packets.Load(), s.bytes.Load()
}

func (s *RTPSink) Close() error { return s.conn.Close() }

// openRTPSink handles rtp://host:port?pt=96&mtu=1200&ssrc=1234.
func openRTPSink(u *url.URL) (Sink, error) {
	q := u.Query()
	pt := uint64(DefaultPayloadType)
	if v := q.Get("pt"); v != "" {
		n, err := strconv.ParseUint(v, 10, 7)
		if err != nil {
			return nil, fmt.Errorf("relay: payload type %q: %w", v, err)
		}
		pt = n
	}
	mtu := DefaultMTU
	if v := q.Get("mtu"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("relay: mtu %q: %w", v, err)
		}
		mtu = n
	}
	var ssrc uint64
	if v := q.Get("ssrc"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("relay: ssrc %q: %w", v, err)
		}
		ssrc = n
	}
	return NewRTPSink(u.Host, uint32(ssrc), uint8(pt), mtu)
}

func init() {
	RegisterSink("rtp", openRTPSink)
}
