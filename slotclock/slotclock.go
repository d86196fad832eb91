package slotclock

import (
	"fmt"
	"sync"
)

// SlotClock is an interface for reading the MAC layer's slot position.
// The scheduling core depends on this abstraction rather than the
// concrete counter so tests can drive slot numbers directly.
type SlotClock interface {
	// CurrentSlot returns the current slot number within the frame.
	CurrentSlot() int
	// SlotsPerFrame returns the fixed frame length in slots.
	SlotsPerFrame() int
}

// Counter drives slot time for one cell and notifies registered
// listeners on every advance. It implements SlotClock.
type Counter struct {
	mu            sync.RWMutex
	slotsPerFrame int
	current       int

	listeners []func(slot int)
}

// NewCounter constructs a counter starting at slot 0.
func NewCounter(slotsPerFrame int) (*Counter, error) {
	if slotsPerFrame <= 0 {
		return nil, fmt.Errorf("slot counter: slots per frame must be positive, got %d", slotsPerFrame)
	}
	return &Counter{slotsPerFrame: slotsPerFrame}, nil
}

// CurrentSlot returns the current slot number. Implements SlotClock.
func (c *Counter) CurrentSlot() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SlotsPerFrame returns the frame length. Implements SlotClock.
func (c *Counter) SlotsPerFrame() int {
	return c.slotsPerFrame
}

// RegisterListener adds a callback invoked with the new slot number
// after every advance.
func (c *Counter) RegisterListener(fn func(slot int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Advance moves to the next slot, wrapping at the frame boundary, and
// returns the new slot number. Listeners run outside the lock.
func (c *Counter) Advance() int {
	c.mu.Lock()
	c.current = (c.current + 1) % c.slotsPerFrame
	slot := c.current
	listeners := make([]func(int), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(slot)
	}
	return slot
}

// Offset returns the number of slots from current to target, accounting
// for wraparound at the frame boundary.
func Offset(target, current, slotsPerFrame int) int {
	if target >= current {
		return target - current
	}
	return slotsPerFrame - current + target
}
