package notify

import "context"

// FakeSender records sent notifications for test assertions.
type FakeSender struct {
	// Sent contains every notification passed to Send.
	Sent []Notification

	// SendError, if set, is returned by Send.
	SendError error
}

// NewFakeSender creates a FakeSender.
func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

// Send records the notification.
func (f *FakeSender) Send(_ context.Context, n Notification) error {
	if f.SendError != nil {
		return f.SendError
	}
	f.Sent = append(f.Sent, n)
	return nil
}

// Titles returns the titles of all recorded notifications, in order.
func (f *FakeSender) Titles() []string {
	titles := make([]string, 0, len(f.Sent))
	for _, n := range f.Sent {
		titles = append(titles, n.Title)
	}
	return titles
}

// Reset clears recorded notifications.
func (f *FakeSender) Reset() {
	f.Sent = nil
	f.SendError = nil
}
