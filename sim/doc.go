// Package sim is a simulated edge SDK backend for development and tests.
//
// The simulation streams an Annex B H.264 file (or a built-in synthetic
// stream) through live views, serves the dock media store from a
// directory, and carries custom cloud messages over a WebSocket. Importing
// the package registers the "sim" backend with the edge facade; its
// configuration is read from the file named by EDGE_SIM_CONFIG.
//
// Example config (TOML):
//
//	verify_keys = true
//	init_delay = "0s"
//
//	[stream]
//	file = "testdata/drone.h264"
//	frame_interval = "30ms"
//
//	[media]
//	dir = "/var/lib/edge/media"
//
//	[cloud]
//	url = "ws://127.0.0.1:8080/cloud"
package sim
