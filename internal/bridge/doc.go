// Package bridge connects a host process to the embedding engine over a
// line-oriented JSON protocol.
//
// The host writes one command per line on the bridge's input:
//
//	{"op":"attach","container":1234}
//	{"op":"resize","width":1280,"height":720}
//	{"op":"detach"}
//	{"op":"status"}
//	{"op":"shutdown","reason":"window closed"}
//
// Commands are translated into host lifecycle events on an [event.Bus];
// the bridge never calls the controller directly. Session state changes
// and embed failures published on the bus are written back as
// notifications, one JSON object per line:
//
//	{"type":"state","session":"...","from":"Uninitialized","state":"Embedded","window":"0x1a2b"}
//	{"type":"error","kind":"WindowNotFound","message":"...","retryable":true}
//
// Lifecycle:
//
//	b := bridge.New(bus, os.Stdout, bridge.WithStatus(registry.Snapshot))
//	b.Start(ctx, os.Stdin) // reads commands in the background
//	<-b.Done()             // input closed or shutdown requested
//	b.Stop()
package bridge
