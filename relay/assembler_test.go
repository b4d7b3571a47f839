package relay

import (
	"bytes"
	"testing"
	"time"
)

var (
	testSPS = []byte{0x67, 0x42, 0xC0, 0x1F, 0xDA, 0x01}
	testPPS = []byte{0x68, 0xCE, 0x3C, 0x80}
	testIDR = []byte{0x65, 0x88, 0x84, 0x00, 0x33}
	testP   = []byte{0x41, 0x9A, 0x02, 0x04}
)

func annexB(nalus ...[]byte) []byte {
	var b []byte
	for _, n := range nalus {
		b = AppendAnnexB(b, n)
	}
	return b
}

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(33 * time.Millisecond)
	return t
}

func TestAssemblerGroupsNALUs(t *testing.T) {
	clk := &stepClock{t: time.Unix(1000, 0)}
	a := NewAssembler()
	a.now = clk.now

	// One NALU per chunk, the way the live view delivers them.
	var units []*AccessUnit
	for _, n := range [][]byte{testSPS, testPPS, testIDR, testP, testP} {
		units = append(units, a.Push(annexB(n))...)
	}
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}

	key := units[0]
	if !key.IsKeyframe() {
		t.Fatal("first unit should be a keyframe")
	}
	if !bytes.Equal(key.Data, annexB(testSPS, testPPS, testIDR)) {
		t.Errorf("keyframe data = %x", key.Data)
	}
	if key.Timestamp != 0 || key.Duration != defaultDuration {
		t.Errorf("keyframe ts=%d dur=%d", key.Timestamp, key.Duration)
	}

	p := units[1]
	if p.FrameType != FrameTypeDelta {
		t.Errorf("second unit type = %v, want Delta", p.FrameType)
	}
	if !bytes.Equal(p.Data, annexB(testP)) {
		t.Errorf("delta data = %x", p.Data)
	}
	if p.Timestamp != 33*90 {
		t.Errorf("delta ts = %d, want %d", p.Timestamp, 33*90)
	}
	if units[2].Timestamp <= p.Timestamp {
		t.Errorf("timestamps not increasing: %d then %d", p.Timestamp, units[2].Timestamp)
	}
	if !bytes.Equal(a.SPS(), testSPS) || !bytes.Equal(a.PPS(), testPPS) {
		t.Error("parameter sets not cached")
	}
}

func TestAssemblerRepeatsParameterSets(t *testing.T) {
	a := NewAssembler()
	a.Push(annexB(testSPS, testPPS, testIDR))

	units := a.Push(annexB(testIDR))
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if !bytes.Equal(units[0].Data, annexB(testSPS, testPPS, testIDR)) {
		t.Errorf("keyframe without parameter sets = %x", units[0].Data)
	}
}

func TestAssemblerDoesNotAlias(t *testing.T) {
	a := NewAssembler()
	chunk := annexB(testSPS, testPPS, testIDR)
	units := a.Push(chunk)
	for i := range chunk {
		chunk[i] = 0xEE
	}
	if !bytes.Equal(units[0].Data, annexB(testSPS, testPPS, testIDR)) {
		t.Error("unit data aliases the input chunk")
	}
}

func TestTimestampOlder(t *testing.T) {
	if !timestampOlder(5, 5) || !timestampOlder(5, 6) || timestampOlder(6, 5) {
		t.Error("plain comparison wrong")
	}
	if !timestampOlder(0xFFFFFFF0, 0x10) {
		t.Error("wraparound not handled")
	}
}
