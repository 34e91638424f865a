package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// DoorEvents contains all door events that were published.
	DoorEvents []DoorEvent

	// SystemEvents contains all lifecycle events that were published.
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by both publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// PublishDoor records the door event.
func (f *FakePublisher) PublishDoor(event DoorEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.DoorEvents = append(f.DoorEvents, event)
	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.DoorEvents = nil
	f.SystemEvents = nil
	f.PublishError = nil
	f.Closed = false
	f.Connected = true
}
