// Package events fans out the messages raised by the ledger node to the
// websocket clients watching it. A message is tagged by its source, the text
// before the first colon such as "state", "worker" or "viewer", and a client
// can ask for only the sources it cares about.
package events

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// A message is dropped if the websocket receiver is not ready to receive it.
// The buffer gives a slow websocket write time to catch up.
const messageBuffer = 100

// receiver is a registered channel and the sources it wants.
type receiver struct {
	ch     chan string
	topics map[string]struct{}
}

// wants reports if the receiver asked for the source of the message.
func (r receiver) wants(topic string) bool {
	if len(r.topics) == 0 {
		return true
	}

	_, exists := r.topics[topic]
	return exists
}

// Events maintains a mapping of unique id and receivers so goroutines
// can register and receive events.
type Events struct {
	m       map[string]receiver
	mu      sync.RWMutex
	dropped atomic.Uint64
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]receiver),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. With topics, only messages from those sources are
// delivered. Acquiring an id twice returns the channel already registered.
func (evt *Events) Acquire(id string, topics ...string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if r, exists := evt.m[id]; exists {
		return r.ch
	}

	r := receiver{
		ch:     make(chan string, messageBuffer),
		topics: make(map[string]struct{}, len(topics)),
	}
	for _, topic := range topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			r.topics[topic] = struct{}{}
		}
	}

	evt.m[id] = r
	return r.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)
	return nil
}

// Send signals a message to every receiver that wants its source. Send will
// not block waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	topic := Topic(s)

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, r := range evt.m {
		if !r.wants(topic) {
			continue
		}

		select {
		case r.ch <- s:
		default:
			evt.dropped.Add(1)
		}
	}
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Dropped returns the number of messages a receiver was too slow to take.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}

// Topic returns the source of the message, the text before the first colon.
func Topic(s string) string {
	topic, _, found := strings.Cut(s, ":")
	if !found {
		return ""
	}

	return strings.TrimSpace(topic)
}
