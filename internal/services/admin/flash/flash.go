// Package flash queues one-time admin notices between a bulk action and the
// next list page render.
package flash

import (
	"context"
	"strings"
	"sync"

	"github.com/louisbranch/adminactions/internal/services/admin/actions"
)

// DefaultLimit caps how many pending notices one identity may hold.
const DefaultLimit = 32

// Queue is an in-memory pending-message queue keyed by request identity.
//
// Push never blocks on readers; once an identity holds Limit notices the
// oldest one is dropped.
type Queue struct {
	// Limit caps pending notices per identity. Zero means DefaultLimit.
	Limit int

	mu      sync.Mutex
	pending map[string][]actions.Message
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push implements actions.MessageSink.
func (q *Queue) Push(_ context.Context, identity string, msg actions.Message) {
	if q == nil {
		return
	}
	normalized, ok := normalize(msg)
	if !ok {
		return
	}
	key := strings.TrimSpace(identity)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = map[string][]actions.Message{}
	}
	queued := append(q.pending[key], normalized)
	if limit := q.limit(); len(queued) > limit {
		queued = queued[len(queued)-limit:]
	}
	q.pending[key] = queued
}

// Drain returns and clears the pending notices for identity in push order.
func (q *Queue) Drain(identity string) []actions.Message {
	if q == nil {
		return nil
	}
	key := strings.TrimSpace(identity)

	q.mu.Lock()
	defer q.mu.Unlock()
	queued := q.pending[key]
	delete(q.pending, key)
	return queued
}

// Pending reports how many notices identity has queued.
func (q *Queue) Pending(identity string) int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[strings.TrimSpace(identity)])
}

func (q *Queue) limit() int {
	if q.Limit > 0 {
		return q.Limit
	}
	return DefaultLimit
}

func normalize(msg actions.Message) (actions.Message, bool) {
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" {
		return actions.Message{}, false
	}
	msg.Level = actions.Level(strings.ToLower(strings.TrimSpace(string(msg.Level))))
	switch msg.Level {
	case actions.LevelDebug, actions.LevelInfo, actions.LevelSuccess, actions.LevelWarning, actions.LevelError:
	case "":
		msg.Level = actions.LevelInfo
	default:
		return actions.Message{}, false
	}
	return msg, true
}

var _ actions.MessageSink = (*Queue)(nil)
