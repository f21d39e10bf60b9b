package domain

// StreamEvent is one server-push event. An empty Event is a plain data event.
type StreamEvent struct {
	Event string
	Data  string
}

// DataEvent carries one generated text fragment.
func DataEvent(fragment string) StreamEvent {
	return StreamEvent{Data: fragment}
}

// ErrorEvent carries a short, client-safe failure message.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Event: StreamEventError, Data: message}
}

// IsError reports whether the event is an in-band error.
func (e StreamEvent) IsError() bool {
	return e.Event == StreamEventError
}
