// Package session holds the single embedding session of a host process.
//
// A Registry is created once by the host and injected into the lifecycle
// controller, which is its only writer. Readers such as the resize path take
// value snapshots and must tolerate the session being absent.
//
// State machine:
//
//	Uninitialized --embed--> Embedded --detach--> Hidden --embed--> Embedded
//	Embedded|Hidden --shutdown--> Terminated
//	Embedded|Hidden --window lost--> Uninitialized
//
// A Terminated session is replaced by a fresh Uninitialized one on the next
// Begin. The window handle is non-zero exactly when the state is Embedded or
// Hidden.
package session
