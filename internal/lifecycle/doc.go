// Package lifecycle orchestrates the embedding session: reuse or launch,
// locate, embed and show on attach; hide on detach; terminate on host
// shutdown.
//
// The Controller is the only writer of the session registry. At most one
// embed sequence runs at a time: concurrent Embed calls share the result of
// the one in flight, and Detach or Shutdown cancel it. Failures never panic
// the host; they are returned as classified errors that Hooks forwards to
// the host as embed.failed notifications.
package lifecycle
