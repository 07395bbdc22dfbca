package notifymock

import (
	"context"
	"sync"

	"microlend/internal/domain/notification"
)

var _ notification.Sink = (*Recorder)(nil)

// Recorder is a notification.Sink that keeps every message in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (r *Recorder) Notify(_ context.Context, msg notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Messages() []notification.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Message(nil), r.msgs...)
}

// For returns the messages addressed to userID.
func (r *Recorder) For(userID string) []notification.Message {
	var out []notification.Message
	for _, m := range r.Messages() {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
