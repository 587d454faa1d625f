// Package events fans out batch progress to server-sent event subscribers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/juceldev/ColoringBook/internal/generation"
)

// retainedTopics bounds how many topics keep their last message for late subscribers
const retainedTopics = 256

// Hub manages topic based subscribers. All access to the topic map happens on the
// goroutine running Run; Subscribe, Unsubscribe and Publish only send to it.
// The last message of a topic is replayed to subscribers that join later.
type Hub struct {
	topics map[string]map[chan []byte]bool
	last   map[string][]byte

	// topics of last in order of first publication, oldest first
	retained []string

	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan topicMessage
	done        chan struct{}
}

type subscription struct {
	ch    chan []byte
	topic string
}

type topicMessage struct {
	topic string
	msg   []byte
}

func NewHub() *Hub {
	return &Hub{
		topics:      make(map[string]map[chan []byte]bool),
		last:        make(map[string][]byte),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan topicMessage, 100),
		done:        make(chan struct{}),
	}
}

// Run processes hub operations until ctx is canceled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-h.subscribe:
			subs, ok := h.topics[s.topic]
			if !ok {
				subs = make(map[chan []byte]bool)
				h.topics[s.topic] = subs
			}
			subs[s.ch] = true
			if msg, ok := h.last[s.topic]; ok {
				select {
				case s.ch <- msg:
				default:
				}
			}
		case s := <-h.unsubscribe:
			if subs, ok := h.topics[s.topic]; ok {
				delete(subs, s.ch)
				if len(subs) == 0 {
					delete(h.topics, s.topic)
				}
			}
		case tm := <-h.publish:
			h.retain(tm)
			for ch := range h.topics[tm.topic] {
				select {
				case ch <- tm.msg:
				default:
					// subscriber is not reading
				}
			}
		}
	}
}

func (h *Hub) retain(tm topicMessage) {
	if _, ok := h.last[tm.topic]; !ok {
		h.retained = append(h.retained, tm.topic)
		if len(h.retained) > retainedTopics {
			delete(h.last, h.retained[0])
			h.retained = h.retained[1:]
		}
	}
	h.last[tm.topic] = tm.msg
}

// Publish sends msg to every subscriber of topic. It is a no-op once the hub stopped.
func (h *Hub) Publish(topic string, msg []byte) {
	select {
	case h.publish <- topicMessage{topic: topic, msg: msg}:
	case <-h.done:
	}
}

// PublishProgress publishes p as JSON on the topic of its batch id
func (h *Hub) PublishProgress(p generation.Progress) {
	if p.BatchID == "" {
		return
	}
	msg, err := json.Marshal(p)
	if err != nil {
		slog.Error("failed to encode progress", "batch_id", p.BatchID, "error", err)
		return
	}
	h.Publish(p.BatchID, msg)
}

// Subscribe registers ch for topic. The caller owns ch and should use a buffered channel.
func (h *Hub) Subscribe(ch chan []byte, topic string) {
	select {
	case h.subscribe <- subscription{ch: ch, topic: topic}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(ch chan []byte, topic string) {
	select {
	case h.unsubscribe <- subscription{ch: ch, topic: topic}:
	case <-h.done:
	}
}
