package relay

import "time"

// defaultDuration is one frame at 30fps in 90kHz units.
const defaultDuration = ClockRate / 30

// Assembler groups NAL units into access units. Each VCL NAL unit closes
// an access unit; the stream is expected to carry one slice per picture.
// Timestamps follow the wall clock at arrival. An Assembler is not safe for
// concurrent use.
type Assembler struct {
	now     func() time.Time
	start   time.Time
	started bool
	lastTS  uint32

	pending  []byte
	hasSPS   bool
	hasPPS   bool
	sps, pps []byte
}

// NewAssembler returns an assembler whose clock starts at the first unit.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// SPS returns the most recent sequence parameter set, or nil.
func (a *Assembler) SPS() []byte { return a.sps }

// PPS returns the most recent picture parameter set, or nil.
func (a *Assembler) PPS() []byte { return a.pps }

// Push consumes Annex B data holding one or more NAL units and returns the
// access units it completes. The returned units do not alias chunk.
func (a *Assembler) Push(chunk []byte) []*AccessUnit {
	var out []*AccessUnit
	for _, nalu := range SplitAnnexB(chunk) {
		if len(nalu) == 0 {
			continue
		}
		switch nalu[0] & 0x1F {
		case NALTypeAUD:
			continue
		case NALTypeSPS:
			a.sps = append(a.sps[:0], nalu...)
			a.hasSPS = true
		case NALTypePPS:
			a.pps = append(a.pps[:0], nalu...)
			a.hasPPS = true
		case NALTypeIDR:
			out = append(out, a.flush(nalu, FrameTypeKey))
			continue
		case NALTypeSlice:
			out = append(out, a.flush(nalu, FrameTypeDelta))
			continue
		}
		a.pending = AppendAnnexB(a.pending, nalu)
	}
	return out
}

func (a *Assembler) flush(vcl []byte, ft FrameType) *AccessUnit {
	var data []byte
	if ft == FrameTypeKey {
		if !a.hasSPS && a.sps != nil {
			data = AppendAnnexB(data, a.sps)
		}
		if !a.hasPPS && a.pps != nil {
			data = AppendAnnexB(data, a.pps)
		}
	}
	data = append(data, a.pending...)
	data = AppendAnnexB(data, vcl)

	ts, dur := a.clock()
	a.pending = a.pending[:0]
	a.hasSPS, a.hasPPS = false, false
	return &AccessUnit{Data: data, FrameType: ft, Timestamp: ts, Duration: dur}
}

func (a *Assembler) clock() (ts, dur uint32) {
	now := a.now()
	if !a.started {
		a.start = now
		a.started = true
		a.lastTS = 0
		return 0, defaultDuration
	}
	ts = uint32(now.Sub(a.start).Milliseconds() * (ClockRate / 1000))
	if timestampOlder(ts, a.lastTS) {
		ts = a.lastTS + 1
	}
	dur = ts - a.lastTS
	a.lastTS = ts
	return ts, dur
}

// timestampOlder reports whether ts1 is older than or equal to ts2, with
// 32-bit wraparound.
func timestampOlder(ts1, ts2 uint32) bool {
	if ts1 == ts2 {
		return true
	}
	return ts2-ts1 < 0x80000000
}
