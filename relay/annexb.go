package relay

import "bytes"

// H.264 NAL unit types.
const (
	NALTypeSlice = 1
	NALTypeIDR   = 5
	NALTypeSEI   = 6
	NALTypeSPS   = 7
	NALTypePPS   = 8
	NALTypeAUD   = 9
	nalTypeSTAPA = 24
	nalTypeFUA   = 28
)

var startCode = []byte{0, 0, 0, 1}

// NALType returns the type of nalu, which may carry a start code.
func NALType(nalu []byte) uint8 {
	nalu = TrimStartCode(nalu)
	if len(nalu) == 0 {
		return 0
	}
	return nalu[0] & 0x1F
}

// TrimStartCode strips a leading 3 or 4 byte start code.
func TrimStartCode(b []byte) []byte {
	switch {
	case len(b) >= 4 && b[0] == 0 && b[1] == 0 && b[2] == 0 && b[3] == 1:
		return b[4:]
	case len(b) >= 3 && b[0] == 0 && b[1] == 0 && b[2] == 1:
		return b[3:]
	}
	return b
}

// SplitAnnexB splits Annex B data into NAL units without start codes.
// Bytes before the first start code are ignored.
func SplitAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := -1

	for i := 0; i < len(data); i++ {
		if i+3 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 0 && data[i+3] == 1 {
			if start >= 0 && i > start {
				nalus = append(nalus, data[start:i])
			}
			start = i + 4
			i += 3
		} else if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			if start >= 0 && i > start {
				nalus = append(nalus, data[start:i])
			}
			start = i + 3
			i += 2
		}
	}

	if start >= 0 && start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

// indexStartCode returns the offset and width of the first start code in s,
// or -1.
func indexStartCode(s []byte) (int, int) {
	i := bytes.Index(s, []byte{0, 0, 1})
	if i < 0 {
		return -1, 0
	}
	if i > 0 && s[i-1] == 0 {
		return i - 1, 4
	}
	return i, 3
}

// ScanNALUs is a bufio.SplitFunc yielding one NAL unit per token, start
// code included. At EOF the remaining bytes form the last unit.
func ScanNALUs(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	first, w := indexStartCode(data)
	if first < 0 {
		if atEOF {
			// No start code at all; nothing usable.
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	body := first + w
	next, _ := indexStartCode(data[body:])
	if next < 0 {
		if atEOF {
			return len(data), data[first:], nil
		}
		return 0, nil, nil
	}
	end := body + next
	return end, data[first:end], nil
}

// AppendAnnexB appends nalu to dst with a 4 byte start code.
func AppendAnnexB(dst, nalu []byte) []byte {
	dst = append(dst, startCode...)
	return append(dst, nalu...)
}
