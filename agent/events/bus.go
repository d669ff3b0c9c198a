// Package events implements the publish/subscribe channel every orchestration
// decision flows through. The bus keeps a bounded trailing buffer so a late
// subscriber can reconstruct run state from history alone.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
)

const (
	// BufferLimit is the trailing-history bound; the oldest event is dropped
	// first once exceeded.
	BufferLimit = 100

	subscriberChanSize = 256
)

type subscriber struct {
	id string
	ch chan contract.Event
}

// Bus fans events out to attached subscribers in emission order and retains
// the last BufferLimit events for replay.
type Bus struct {
	mu     sync.Mutex
	buffer []contract.Event
	subs   map[string]*subscriber
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]*subscriber),
	}
}

// Publish appends to the trailing buffer and pushes to every subscriber. A
// subscriber that cannot keep up has the event dropped rather than blocking
// the run.
func (b *Bus) Publish(ev contract.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = append(b.buffer, ev)
	if len(b.buffer) > BufferLimit {
		b.buffer = b.buffer[len(b.buffer)-BufferLimit:]
	}

	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			log.Warn().Str("subscriber", sub.id).Str("type", string(ev.Type)).Msg("subscriber channel full, event dropped")
		}
	}
}

// Subscribe attaches a listener. The returned channel first yields a synthetic
// connected marker, then the current buffer contents in original emission
// order, then live events. The cancel func detaches and closes the channel.
func (b *Bus) Subscribe() (<-chan contract.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		id: uuid.NewString(),
		ch: make(chan contract.Event, subscriberChanSize),
	}

	sub.ch <- contract.Timeline("System", "Connected to AI Brain", contract.TimelineAccepted)
	for _, ev := range b.buffer {
		sub.ch <- ev
	}
	b.subs[sub.id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub.id]; ok {
			delete(b.subs, sub.id)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Reset clears the trailing buffer. Called at the start of every new top-level
// run; a clarification resume keeps the buffer so the caller sees continuity.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = nil
}

// History returns a copy of the current buffer, oldest first.
func (b *Bus) History() []contract.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]contract.Event(nil), b.buffer...)
}
