package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Gateway throttles outbound notifications. Repeat sends of the same
// (title, body) pair within the minimum interval are suppressed. The
// ledger only grows on successful delivery, so a failed attempt does not
// throttle the retry a later occurrence would naturally trigger.
//
// Not safe for concurrent use; the monitor loop is the only caller.
type Gateway struct {
	sender      Sender
	minInterval time.Duration
	log         *zap.Logger

	// now is injectable for tests.
	now func() time.Time

	// lastSent maps notification identity (title+body) to the last
	// successful send. Unbounded, which is fine at door-event rates.
	lastSent map[string]time.Time
}

// NewGateway creates a Gateway over the given sender.
func NewGateway(sender Sender, minInterval time.Duration, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		sender:      sender,
		minInterval: minInterval,
		log:         log,
		now:         time.Now,
		lastSent:    make(map[string]time.Time),
	}
}

// SetNow replaces the clock. Tests use this to step time explicitly.
func (g *Gateway) SetNow(now func() time.Time) {
	g.now = now
}

// Notify delivers the notification unless an identical one was delivered
// within the minimum interval. Returns (true, nil) on delivery,
// (false, nil) when suppressed or empty, and (false, err) on a delivery
// failure.
func (g *Gateway) Notify(ctx context.Context, n Notification) (bool, error) {
	if n.Title == "" && n.Body == "" {
		return false, nil
	}

	key := n.Title + "\x00" + n.Body
	now := g.now()

	if last, ok := g.lastSent[key]; ok && now.Sub(last) < g.minInterval {
		g.log.Info("skipping notification (too soon)", zap.String("title", n.Title))
		return false, nil
	}

	if err := g.sender.Send(ctx, n); err != nil {
		return false, err
	}

	g.lastSent[key] = now
	g.log.Info("notification sent",
		zap.String("title", n.Title),
		zap.String("priority", string(n.Priority)))
	return true, nil
}
