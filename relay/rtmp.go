package relay

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"

	"github.com/yutopp/go-rtmp"
	rtmpmsg "github.com/yutopp/go-rtmp/message"
)

const (
	rtmpChunkSize     = 4096
	rtmpVideoStreamID = 6

	flvCodecAVC     = 7
	flvKeyFrame     = 1
	flvInterFrame   = 2
	avcSeqHeader    = 0
	avcNALU         = 1
	flvVideoHdrSize = 5
)

// RTMPSink publishes access units to an RTMP server as FLV AVC video.
// Delta frames are dropped until the first keyframe; the decoder
// configuration is sent before it and again whenever the parameter sets
// change.
type RTMPSink struct {
	name   string
	conn   *rtmp.ClientConn
	stream *rtmp.Stream

	sps, pps []byte
	started  bool
}

// NewRTMPSink connects to rawURL (rtmp://host[:port]/app/stream) and
// starts publishing.
func NewRTMPSink(rawURL string) (*RTMPSink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("relay: parse rtmp url: %w", err)
	}
	return dialRTMP(u)
}

func dialRTMP(u *url.URL) (*RTMPSink, error) {
	app, name, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || app == "" || name == "" {
		return nil, fmt.Errorf("relay: rtmp url needs /app/stream: %q", u.String())
	}
	host := u.Host
	if u.Port() == "" {
		host += ":1935"
	}

	conn, err := rtmp.Dial("rtmp", host, &rtmp.ConnConfig{})
	if err != nil {
		return nil, fmt.Errorf("relay: dial rtmp %s: %w", host, err)
	}
	tcURL := fmt.Sprintf("rtmp://%s/%s", u.Host, app)
	if err := conn.Connect(&rtmpmsg.NetConnectionConnect{
		Command: rtmpmsg.NetConnectionConnectCommand{
			App:   app,
			Type:  "nonprivate",
			TCURL: tcURL,
		},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("relay: rtmp connect: %w", err)
	}
	stream, err := conn.CreateStream(nil, rtmpChunkSize)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("relay: rtmp create stream: %w", err)
	}
	if err := stream.Publish(&rtmpmsg.NetStreamPublish{
		PublishingName: name,
		PublishingType: "live",
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("relay: rtmp publish: %w", err)
	}
	return &RTMPSink{
		name:   tcURL + "/" + name,
		conn:   conn,
		stream: stream,
	}, nil
}

func (s *RTMPSink) Name() string { return s.name }

// WriteUnit sends u as an FLV video tag.
func (s *RTMPSink) WriteUnit(u *AccessUnit) error {
	tag, seq := s.encode(u)
	ts := u.Timestamp / (ClockRate / 1000)
	if seq != nil {
		if err := s.write(ts, seq); err != nil {
			return err
		}
	}
	if tag == nil {
		return nil
	}
	return s.write(ts, tag)
}

// encode builds the FLV tag for u and, when needed, the sequence header
// tag to send before it.
func (s *RTMPSink) encode(u *AccessUnit) (tag, seq []byte) {
	var nalus [][]byte
	var sps, pps []byte
	for _, n := range u.NALUs() {
		switch n[0] & 0x1F {
		case NALTypeSPS:
			sps = n
		case NALTypePPS:
			pps = n
		case NALTypeAUD:
		default:
			nalus = append(nalus, n)
		}
	}
	if len(sps) >= 4 && pps != nil && (!bytes.Equal(sps, s.sps) || !bytes.Equal(pps, s.pps)) {
		s.sps = append(s.sps[:0], sps...)
		s.pps = append(s.pps[:0], pps...)
		seq = AVCSequenceHeaderTag(s.sps, s.pps)
	}
	if !s.started {
		if !u.IsKeyframe() || s.sps == nil {
			return nil, seq
		}
		s.started = true
	}
	if len(nalus) == 0 {
		return nil, seq
	}
	return AVCNALUTag(nalus, u.IsKeyframe()), seq
}

func (s *RTMPSink) write(ts uint32, payload []byte) error {
	err := s.stream.Write(rtmpVideoStreamID, ts, &rtmpmsg.VideoMessage{
		Payload: bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("relay: write rtmp video: %w", err)
	}
	return nil
}

func (s *RTMPSink) Close() error {
	return s.conn.Close()
}

// AVCSequenceHeaderTag returns the FLV video tag body carrying the AVC
// decoder configuration record for sps and pps. sps must hold at least the
// NAL header and profile bytes.
func AVCSequenceHeaderTag(sps, pps []byte) []byte {
	b := []byte{flvKeyFrame<<4 | flvCodecAVC, avcSeqHeader, 0, 0, 0}
	b = append(b, 0x01, sps[1], sps[2], sps[3], 0xFF, 0xE1)
	b = binary.BigEndian.AppendUint16(b, uint16(len(sps)))
	b = append(b, sps...)
	b = append(b, 0x01)
	b = binary.BigEndian.AppendUint16(b, uint16(len(pps)))
	return append(b, pps...)
}

// AVCNALUTag returns the FLV video tag body carrying nalus in AVCC form.
func AVCNALUTag(nalus [][]byte, key bool) []byte {
	size := flvVideoHdrSize
	for _, n := range nalus {
		size += 4 + len(n)
	}
	frame := byte(flvInterFrame)
	if key {
		frame = flvKeyFrame
	}
	b := make([]byte, 0, size)
	b = append(b, frame<<4|flvCodecAVC, avcNALU, 0, 0, 0)
	for _, n := range nalus {
		b = binary.BigEndian.AppendUint32(b, uint32(len(n)))
		b = append(b, n...)
	}
	return b
}

// ParseAVCDecoderConfig extracts the first SPS and PPS from an AVC
// decoder configuration record.
func ParseAVCDecoderConfig(data []byte) (sps, pps []byte) {
	if len(data) < 8 {
		return
	}
	offset := 5
	numSPS := int(data[offset] & 0x1F)
	offset++

	for i := 0; i < numSPS && offset+2 <= len(data); i++ {
		length := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if offset+length > len(data) {
			return
		}
		if sps == nil {
			sps = append([]byte(nil), data[offset:offset+length]...)
		}
		offset += length
	}

	if offset >= len(data) {
		return
	}
	numPPS := int(data[offset])
	offset++

	for i := 0; i < numPPS && offset+2 <= len(data); i++ {
		length := int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
		if offset+length > len(data) {
			return
		}
		if pps == nil {
			pps = append([]byte(nil), data[offset:offset+length]...)
		}
		offset += length
	}
	return
}

// ParseAVCC splits 4 byte length prefixed NAL units.
func ParseAVCC(data []byte) [][]byte {
	var nalus [][]byte
	for offset := 0; offset+4 <= len(data); {
		length := int(binary.BigEndian.Uint32(data[offset:]))
		offset += 4
		if length <= 0 || offset+length > len(data) {
			break
		}
		nalus = append(nalus, data[offset:offset+length])
		offset += length
	}
	return nalus
}

func openRTMPSink(u *url.URL) (Sink, error) {
	return dialRTMP(u)
}

func init() {
	RegisterSink("rtmp", openRTMPSink)
}
