package relay

import (
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// WebRTCSink writes access units to a pion sample track. Add Track to any
// number of peer connections; pion packetizes per connection.
type WebRTCSink struct {
	track *webrtc.TrackLocalStaticSample
}

// NewWebRTCSink creates an H.264 sample track.
func NewWebRTCSink(id, streamID string) (*WebRTCSink, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: ClockRate},
		id, streamID,
	)
	if err != nil {
		return nil, err
	}
	return &WebRTCSink{track: track}, nil
}

// Track returns the local track to add to peer connections.
func (s *WebRTCSink) Track() *webrtc.TrackLocalStaticSample { return s.track }

func (s *WebRTCSink) Name() string { return "webrtc:" + s.track.ID() }

// WriteUnit writes u as one media sample.
func (s *WebRTCSink) WriteUnit(u *AccessUnit) error {
	dur := u.Duration
	if dur == 0 {
		dur = defaultDuration
	}
	return s.track.WriteSample(media.Sample{
		Data:     u.Data,
		Duration: time.Duration(dur) * time.Second / ClockRate,
	})
}

func (s *WebRTCSink) Close() error { return nil }
