// Package notify fans out stream-switch notifications. Views subscribed to
// the broadcaster observe a switch before their next scoped fetch, which is
// what keeps a fetch for the previous stream from being rendered after the
// switch. With Redis attached, switches also reach other instances.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channel = "crm:stream:switch"

// StreamChange announces that a session's active stream changed. StreamID
// is empty when the reference was cleared.
type StreamChange struct {
	SessionID string `json:"sessionId"`
	StreamID  string `json:"streamId"`
	Epoch     int64  `json:"epoch"`
	origin    string
}

type streamChangeWire struct {
	SessionID string `json:"sessionId"`
	StreamID  string `json:"streamId"`
	Epoch     int64  `json:"epoch"`
	Origin    string `json:"origin"`
}

type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan StreamChange
	nextID int
	closed bool

	id     string
	rdb    *redis.Client
	cancel context.CancelFunc
}

// NewBroadcaster creates a local broadcaster. rdb may be nil (tests,
// single-instance deployments); when set, switches published here are
// relayed to every other instance listening on the same channel.
func NewBroadcaster(rdb *redis.Client) *Broadcaster {
	b := &Broadcaster{
		subs: make(map[int]chan StreamChange),
		id:   uuid.NewString(),
		rdb:  rdb,
	}
	if rdb != nil {
		ctx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		go b.relay(ctx)
	}
	return b
}

// Subscribe returns a channel of switch notifications and a cancel func.
// The channel is buffered; a subscriber that stops draining loses messages
// rather than blocking publishers.
func (b *Broadcaster) Subscribe() (<-chan StreamChange, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan StreamChange, 16)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// Publish delivers the change to every local subscriber exactly once and,
// when Redis is attached, to the shared channel for other instances.
func (b *Broadcaster) Publish(ctx context.Context, ch StreamChange) {
	b.deliver(ch)
	if b.rdb != nil {
		msg, _ := json.Marshal(streamChangeWire{
			SessionID: ch.SessionID,
			StreamID:  ch.StreamID,
			Epoch:     ch.Epoch,
			Origin:    b.id,
		})
		if err := b.rdb.Publish(ctx, channel, msg).Err(); err != nil {
			log.Printf("stream switch publish: %v", err)
		}
	}
}

func (b *Broadcaster) deliver(ch StreamChange) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub <- ch:
		default:
		}
	}
}

func (b *Broadcaster) relay(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, channel)
	defer sub.Close()
	for msg := range sub.Channel() {
		var w streamChangeWire
		if err := json.Unmarshal([]byte(msg.Payload), &w); err != nil {
			continue
		}
		// Local publishes were already delivered directly.
		if w.Origin == b.id {
			continue
		}
		b.deliver(StreamChange{SessionID: w.SessionID, StreamID: w.StreamID, Epoch: w.Epoch})
	}
}

func (b *Broadcaster) Close() {
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, c := range b.subs {
		delete(b.subs, id)
		close(c)
	}
}
