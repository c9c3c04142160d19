package watch

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Bus is a small typed in-process event bus for rebuild orchestration. It
// is not durable; it only carries control-flow events inside one process.
type Bus struct {
	mu     sync.RWMutex
	subs   map[reflect.Type]map[uint64]*subscriber
	nextID uint64
	closed bool
}

// subscriber serializes delivery and close so that a late Publish can
// never send on a closed channel.
type subscriber struct {
	mu      sync.Mutex
	closed  bool
	deliver func(ctx context.Context, evt any) error
	stop    func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type]map[uint64]*subscriber)}
}

// Subscribe registers for events of concrete type T. The returned cancel
// function unsubscribes and closes the channel; it is safe to call twice.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	eventType := reflect.TypeFor[T]()
	ch := make(chan T, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	sub := &subscriber{}

	sub.deliver = func(ctx context.Context, evt any) error {
		v, ok := evt.(T)
		if !ok {
			return fmt.Errorf("event type mismatch: want %s, got %T", eventType, evt)
		}
		sub.mu.Lock()
		defer sub.mu.Unlock()
		if sub.closed {
			return nil
		}
		select {
		case ch <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var once sync.Once
	sub.stop = func() {
		once.Do(func() {
			b.mu.Lock()
			if typeSubs, ok := b.subs[eventType]; ok {
				delete(typeSubs, id)
				if len(typeSubs) == 0 {
					delete(b.subs, eventType)
				}
			}
			b.mu.Unlock()

			sub.mu.Lock()
			sub.closed = true
			close(ch)
			sub.mu.Unlock()
		})
	}

	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]*subscriber)
	}
	b.subs[eventType][id] = sub
	b.mu.Unlock()

	return ch, sub.stop
}

// Publish delivers evt to every subscriber of its concrete type, blocking
// per subscriber until delivered or ctx is canceled. Publishing on a
// closed bus is a no-op.
func Publish[T any](b *Bus, ctx context.Context, evt T) error {
	eventType := reflect.TypeFor[T]()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	targets := make([]*subscriber, 0, len(b.subs[eventType]))
	for _, sub := range b.subs[eventType] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.deliver(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the bus down and closes all subscription channels.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var stops []func()
	for _, typeSubs := range b.subs {
		for _, sub := range typeSubs {
			stops = append(stops, sub.stop)
		}
	}
	b.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}
