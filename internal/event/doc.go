// Package event provides the pub-sub bus that connects host lifecycle hooks
// to the embedding core.
//
// Hosts publish [ContainerAttachedEvent], [ContainerDetachedEvent],
// [ContainerResizedEvent] and [HostShutdownEvent]. The core publishes
// [EmbedFailedEvent] and [SessionStateChangedEvent] back so hosts can show
// notifications without importing the controller.
//
// The [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is logged and does not stop
// delivery to the others.
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeEmbedFailed, func(e event.Event) {
//	    failed := e.(event.EmbedFailedEvent)
//	    notify(failed.Kind, failed.Message)
//	})
//	bus.Publish(event.NewContainerAttachedEvent(hwnd))
package event
