// Package relay forwards a live view H.264 stream to network sinks.
//
// Stream data arrives one NAL unit at a time in Annex B form, the way the
// edge SDK delivers it. An Assembler groups NAL units into access units,
// and a Fanout hands each access unit to every sink without blocking the
// producer:
//
//	live view callback -> Relay.Write -> Assembler -> Fanout -> sinks
//
// Sinks:
//   - RTPSink: RTP/UDP with RFC 6184 packetization (single NAL, FU-A)
//   - WebRTCSink: a pion sample track
//   - RTMPSink: FLV/AVC tags published to an RTMP server
//
// Sinks are opened by URL through a registry keyed by scheme; see OpenSink.
package relay
