package relay

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/yutopp/go-rtmp"
	rtmpmsg "github.com/yutopp/go-rtmp/message"
)

func TestSinkRegistry(t *testing.T) {
	schemes := strings.Join(SinkSchemes(), ",")
	if schemes != "rtmp,rtp" {
		t.Errorf("schemes = %q", schemes)
	}
	if _, err := OpenSink("srt://127.0.0.1:9000"); err == nil {
		t.Error("expected error for unregistered scheme")
	}
	if _, err := OpenSink("rtp://127.0.0.1:5004?pt=300"); err == nil {
		t.Error("expected error for out of range payload type")
	}
	if _, err := OpenSink("rtmp://127.0.0.1/live"); err == nil {
		t.Error("expected error for rtmp url without stream name")
	}
}

func TestRTPSinkSendsPackets(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	sink, err := OpenSink(fmt.Sprintf("rtp://%s?pt=102&ssrc=77&mtu=600", pc.LocalAddr()))
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	defer sink.Close()

	big := bytes.Repeat([]byte{0x11}, 1500)
	big[0] = 0x65
	in := &AccessUnit{Data: annexB(testSPS, testPPS, big), FrameType: FrameTypeKey, Timestamp: 9000}
	if err := sink.WriteUnit(in); err != nil {
		t.Fatalf("WriteUnit: %v", err)
	}

	d := NewDepacketizer()
	buf := make([]byte, 2048)
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		u, err := d.DepacketizeBytes(buf[:n])
		if err != nil {
			t.Fatalf("depacketize: %v", err)
		}
		if u == nil {
			continue
		}
		if !bytes.Equal(u.Data, in.Data) {
			t.Errorf("received %d bytes, want %d", len(u.Data), len(in.Data))
		}
		break
	}

	packets, _ := sink.(*RTPSink).Stats()
	if packets < 3 {
		t.Errorf("sent %d packets, want at least 3", packets)
	}
}

func TestWebRTCSink(t *testing.T) {
	s, err := NewWebRTCSink("video", "edge")
	if err != nil {
		t.Fatalf("NewWebRTCSink: %v", err)
	}
	if s.Track().Codec().MimeType != "video/H264" {
		t.Errorf("mime = %q", s.Track().Codec().MimeType)
	}
	// Without a bound peer connection samples are discarded.
	if err := s.WriteUnit(&AccessUnit{Data: annexB(testIDR), FrameType: FrameTypeKey}); err != nil {
		t.Errorf("WriteUnit: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestFLVTags(t *testing.T) {
	seq := AVCSequenceHeaderTag(testSPS, testPPS)
	if seq[0] != 0x17 || seq[1] != avcSeqHeader {
		t.Fatalf("sequence header prefix = %x", seq[:2])
	}
	sps, pps := ParseAVCDecoderConfig(seq[flvVideoHdrSize:])
	if !bytes.Equal(sps, testSPS) || !bytes.Equal(pps, testPPS) {
		t.Errorf("parsed sps=%x pps=%x", sps, pps)
	}

	tag := AVCNALUTag([][]byte{testP, testP}, false)
	if tag[0] != 0x27 || tag[1] != avcNALU {
		t.Fatalf("nalu tag prefix = %x", tag[:2])
	}
	nalus := ParseAVCC(tag[flvVideoHdrSize:])
	if len(nalus) != 2 || !bytes.Equal(nalus[1], testP) {
		t.Errorf("parsed %d nalus", len(nalus))
	}
	if len(ParseAVCC([]byte{0, 0, 0, 0xFF, 0x65})) != 0 {
		t.Error("truncated AVCC should yield nothing")
	}
	if s, p := ParseAVCDecoderConfig([]byte{1, 2, 3}); s != nil || p != nil {
		t.Error("short record should yield nothing")
	}
}

type captureHandler struct {
	rtmp.DefaultHandler
	published chan string
	video     chan []byte
}

func (h *captureHandler) OnPublish(_ *rtmp.StreamContext, _ uint32, cmd *rtmpmsg.NetStreamPublish) error {
	h.published <- cmd.PublishingName
	return nil
}

func (h *captureHandler) OnVideo(_ uint32, payload io.Reader) error {
	b, err := io.ReadAll(payload)
	if err != nil {
		return err
	}
	h.video <- b
	return nil
}

func TestRTMPSinkPublishes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	h := &captureHandler{published: make(chan string, 1), video: make(chan []byte, 16)}
	srv := rtmp.NewServer(&rtmp.ServerConfig{
		OnConnect: func(conn net.Conn) (io.ReadWriteCloser, *rtmp.ConnConfig) {
			return conn, &rtmp.ConnConfig{
				Handler: h,
				ControlState: rtmp.StreamControlStateConfig{
					DefaultBandwidthWindowSize: 6 * 1024 * 1024,
				},
			}
		},
	})
	go srv.Serve(ln)

	sink, err := NewRTMPSink(fmt.Sprintf("rtmp://%s/live/drone", ln.Addr()))
	if err != nil {
		t.Fatalf("NewRTMPSink: %v", err)
	}
	defer sink.Close()

	select {
	case name := <-h.published:
		if name != "drone" {
			t.Errorf("published %q, want drone", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("publish not received")
	}

	// A delta frame before the first keyframe is dropped.
	if err := sink.WriteUnit(&AccessUnit{Data: annexB(testP), FrameType: FrameTypeDelta}); err != nil {
		t.Fatalf("WriteUnit delta: %v", err)
	}
	if err := sink.WriteUnit(&AccessUnit{Data: annexB(testSPS, testPPS, testIDR), FrameType: FrameTypeKey, Timestamp: 2970}); err != nil {
		t.Fatalf("WriteUnit key: %v", err)
	}

	var got [][]byte
	for len(got) < 2 {
		select {
		case b := <-h.video:
			got = append(got, b)
		case <-time.After(3 * time.Second):
			t.Fatalf("received %d video messages, want 2", len(got))
		}
	}
	if got[0][1] != avcSeqHeader {
		t.Errorf("first message is not the sequence header: %x", got[0][:2])
	}
	nalus := ParseAVCC(got[1][flvVideoHdrSize:])
	if got[1][0] != 0x17 || len(nalus) != 1 || !bytes.Equal(nalus[0], testIDR) {
		t.Errorf("keyframe tag = %x", got[1])
	}
}
