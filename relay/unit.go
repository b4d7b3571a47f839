package relay

// FrameType indicates whether an access unit is a keyframe or delta frame.
type FrameType int

const (
	FrameTypeUnknown FrameType = iota
	FrameTypeKey               // IDR, decodable on its own
	FrameTypeDelta             // P/B slice, needs previous frames
)

func (f FrameType) String() string {
	switch f {
	case FrameTypeKey:
		return "Key"
	case FrameTypeDelta:
		return "Delta"
	default:
		return "Unknown"
	}
}

// ClockRate of H.264 RTP timestamps.
const ClockRate = 90000

// AccessUnit is one coded picture in Annex B form, with the parameter sets
// prepended on keyframes.
type AccessUnit struct {
	Data      []byte    // Annex B bitstream
	FrameType FrameType // Key or delta
	Timestamp uint32    // 90kHz
	Duration  uint32    // 90kHz units since the previous unit
}

// IsKeyframe returns true if this is a keyframe.
func (u *AccessUnit) IsKeyframe() bool {
	return u.FrameType == FrameTypeKey
}

// NALUs returns the NAL units of u without start codes.
func (u *AccessUnit) NALUs() [][]byte {
	return SplitAnnexB(u.Data)
}

// Clone creates a deep copy of the access unit.
func (u *AccessUnit) Clone() *AccessUnit {
	c := *u
	if u.Data != nil {
		c.Data = make([]byte, len(u.Data))
		copy(c.Data, u.Data)
	}
	return &c
}
