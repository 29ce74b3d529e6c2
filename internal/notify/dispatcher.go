package notify

import (
	"context"
	"log"
)

// Dispatcher hands a push notification to the transport. Delivery and
// retry are the transport's responsibility, not ours.
type Dispatcher interface {
	Send(ctx context.Context, token, title, body string) error
}

// LogDispatcher prints notifications instead of sending them; used in
// development and in dry runs.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, token, title, body string) error {
	log.Printf("notify: token=%s title=%q body=%q", token, title, body)
	return nil
}
