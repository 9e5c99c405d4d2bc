package bus

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan *models.Message
}

// MemoryBus is the in-process Bus implementation. Subscribers are grouped per
// notification id; publishes within one id reach each subscriber in publish
// order, ids are independent of each other.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string]map[string]*subscriber
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[string]*subscriber)}
}

func (b *MemoryBus) Publish(ctx context.Context, notificationID primitive.ObjectID, msg *models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, sub := range b.subs[notificationID.Hex()] {
		select {
		case sub.ch <- msg:
		default:
			// Subscriber is not keeping up; drop instead of blocking the
			// mutation path.
			log.Printf("MemoryBus: dropped message %s for slow subscriber %s", msg.ID.Hex(), key)
		}
	}
}

func (b *MemoryBus) Subscribe(ctx context.Context, notificationID primitive.ObjectID) (<-chan *models.Message, func()) {
	sub := &subscriber{ch: make(chan *models.Message, subscriberBuffer)}
	topic := notificationID.Hex()
	key := uuid.NewString()

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]*subscriber)
	}
	b.subs[topic][key] = sub
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], key)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			b.mu.Unlock()
			close(sub.ch)
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return sub.ch, cancel
}
