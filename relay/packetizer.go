package relay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/rtp"
)

// DefaultMTU for RTP packets (UDP safe).
const DefaultMTU = 1200

const rtpHeaderSize = 12

// ErrNoNALUnits is returned for access units without any NAL unit.
var ErrNoNALUnits = errors.New("relay: no NAL units in access unit")

// Packetizer splits H.264 access units into RTP packets following RFC 6184:
// single NAL unit packets when they fit, FU-A fragments otherwise.
type Packetizer struct {
	ssrc        uint32
	payloadType uint8
	mtu         int
	sequencer   rtp.Sequencer
	mu          sync.Mutex
}

// NewPacketizer creates an H.264 RTP packetizer. A non-positive mtu
// selects DefaultMTU.
func NewPacketizer(ssrc uint32, payloadType uint8, mtu int) *Packetizer {
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	return &Packetizer{
		ssrc:        ssrc,
		payloadType: payloadType,
		mtu:         mtu,
		sequencer:   rtp.NewRandomSequencer(),
	}
}

// Packetize converts an access unit into RTP packets. The marker bit is set
// on the last packet.
func (p *Packetizer) Packetize(u *AccessUnit) ([]*rtp.Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(u.Data) == 0 {
		return nil, nil
	}
	nalus := SplitAnnexB(u.Data)
	if len(nalus) == 0 {
		return nil, ErrNoNALUnits
	}

	var packets []*rtp.Packet
	for i, nalu := range nalus {
		last := i == len(nalus)-1
		if len(nalu) <= p.mtu-rtpHeaderSize {
			packets = append(packets, p.packet(nalu, u.Timestamp, last))
			continue
		}
		packets = append(packets, p.fragment(nalu, u.Timestamp, last)...)
	}
	return packets, nil
}

func (p *Packetizer) packet(payload []byte, ts uint32, marker bool) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         marker,
			PayloadType:    p.payloadType,
			SequenceNumber: p.sequencer.NextSequenceNumber(),
			Timestamp:      ts,
			SSRC:           p.ssrc,
		},
		Payload: payload,
	}
}

// fragment splits a large NAL unit into FU-A packets.
func (p *Packetizer) fragment(nalu []byte, ts uint32, lastNALU bool) []*rtp.Packet {
	header := nalu[0]
	nalType := header & 0x1F
	nri := header & 0x60

	payload := nalu[1:]
	maxPayload := p.mtu - rtpHeaderSize - 2 // FU indicator + FU header

	var packets []*rtp.Packet
	for offset := 0; offset < len(payload); {
		end := min(offset+maxPayload, len(payload))
		first := offset == 0
		last := end == len(payload)

		fuHeader := nalType
		if first {
			fuHeader |= 0x80
		}
		if last {
			fuHeader |= 0x40
		}

		buf := make([]byte, 2+end-offset)
		buf[0] = nri | nalTypeFUA
		buf[1] = fuHeader
		copy(buf[2:], payload[offset:end])

		packets = append(packets, p.packet(buf, ts, last && lastNALU))
		offset = end
	}
	return packets
}

// PacketizeToBytes converts an access unit to raw RTP packet bytes.
func (p *Packetizer) PacketizeToBytes(u *AccessUnit) ([][]byte, error) {
	packets, err := p.Packetize(u)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(packets))
	for _, pkt := range packets {
		b, err := pkt.Marshal()
		if err != nil {
			return nil, fmt.Errorf("relay: marshal rtp: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (p *Packetizer) SSRC() uint32       { p.mu.Lock(); defer p.mu.Unlock(); return p.ssrc }
func (p *Packetizer) PayloadType() uint8 { p.mu.Lock(); defer p.mu.Unlock(); return p.payloadType }
func (p *Packetizer) MTU() int           { p.mu.Lock(); defer p.mu.Unlock(); return p.mtu }

// Depacketizer reassembles access units from H.264 RTP packets.
type Depacketizer struct {
	frame       []byte // Annex B data of the current access unit
	fua         []byte // NAL unit being reassembled from FU-A
	fragmenting bool
	timestamp   uint32
	frameType   FrameType
	mu          sync.Mutex
}

// NewDepacketizer creates an H.264 RTP depacketizer.
func NewDepacketizer() *Depacketizer {
	return &Depacketizer{}
}

// Depacketize processes one packet and returns an access unit once the
// marker bit completes it.
func (d *Depacketizer) Depacketize(pkt *rtp.Packet) (*AccessUnit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(pkt.Payload) == 0 {
		return nil, nil
	}

	if d.timestamp != pkt.Timestamp {
		d.reset()
	}
	d.timestamp = pkt.Timestamp

	switch t := pkt.Payload[0] & 0x1F; {
	case t >= 1 && t <= 23:
		d.mark(t)
		d.frame = AppendAnnexB(d.frame, pkt.Payload)
	case t == nalTypeSTAPA:
		d.stapA(pkt.Payload)
	case t == nalTypeFUA:
		if err := d.fuA(pkt.Payload); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("relay: unsupported NAL type %d", t)
	}

	if !pkt.Marker || len(d.frame) == 0 {
		return nil, nil
	}
	u := &AccessUnit{
		Data:      append([]byte(nil), d.frame...),
		FrameType: d.frameType,
		Timestamp: d.timestamp,
	}
	d.reset()
	return u, nil
}

func (d *Depacketizer) mark(nalType uint8) {
	switch {
	case nalType == NALTypeIDR:
		d.frameType = FrameTypeKey
	case nalType == NALTypeSlice && d.frameType != FrameTypeKey:
		d.frameType = FrameTypeDelta
	}
}

func (d *Depacketizer) stapA(payload []byte) {
	for off := 1; off+2 <= len(payload); {
		n := int(binary.BigEndian.Uint16(payload[off:]))
		off += 2
		if n == 0 || off+n > len(payload) {
			return
		}
		d.mark(payload[off] & 0x1F)
		d.frame = AppendAnnexB(d.frame, payload[off:off+n])
		off += n
	}
}

func (d *Depacketizer) fuA(payload []byte) error {
	if len(payload) < 2 {
		return errors.New("relay: FU-A packet too short")
	}
	indicator, header := payload[0], payload[1]
	nalType := header & 0x1F

	if header&0x80 != 0 {
		d.mark(nalType)
		d.fua = append(d.fua[:0], (indicator&0xE0)|nalType)
		d.fragmenting = true
	}
	if !d.fragmenting {
		return nil
	}
	d.fua = append(d.fua, payload[2:]...)
	if header&0x40 != 0 {
		d.frame = AppendAnnexB(d.frame, d.fua)
		d.fua = d.fua[:0]
		d.fragmenting = false
	}
	return nil
}

func (d *Depacketizer) reset() {
	d.frame = d.frame[:0]
	d.fua = d.fua[:0]
	d.fragmenting = false
	d.frameType = FrameTypeUnknown
}

// DepacketizeBytes processes raw RTP packet bytes.
func (d *Depacketizer) DepacketizeBytes(data []byte) (*AccessUnit, error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(data); err != nil {
		return nil, err
	}
	return d.Depacketize(&pkt)
}
