// Package client is the Go API over the edge C facade.
//
// It drives the facade exactly as a C caller would: strings travel as
// views, objects are integer handles and callbacks are C function pointers
// created with purego.NewCallback. Callback contexts are registry ids, so
// no Go pointer is ever handed to the facade.
//
// Typical use:
//
//	err := client.InitSDK(client.Config{
//		ProductName:  "Edge-1.0",
//		SerialNumber: "SN0001",
//		PrivateKey:   priv,
//		PublicKey:    pub,
//		Logger:       slog.Default(),
//	})
//	lv, _ := client.NewLiveView()
//	defer lv.Destroy()
//	_ = lv.Init(client.CameraTypePayload, client.StreamQuality720p, receiver)
//	_ = lv.StartH264Stream()
package client
