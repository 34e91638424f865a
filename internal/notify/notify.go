// Package notify provides push notification delivery with throttling.
// The Gateway deduplicates repeat notifications; the Sender interface
// abstracts the delivery channel so tests run without a network.
package notify

import "context"

// Priority mirrors the delivery channel's priority levels.
type Priority string

const (
	PriorityMin     Priority = "min"
	PriorityLow     Priority = "low"
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
)

// Notification is one outbound push message.
type Notification struct {
	Title    string
	Body     string
	Priority Priority
	Tags     []string
}

// Sender delivers a notification over the configured channel.
type Sender interface {
	// Send delivers the notification. Any non-2xx response or transport
	// error is returned as an error; neither is fatal to the caller.
	Send(ctx context.Context, n Notification) error
}
