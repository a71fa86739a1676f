package domain

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// LineItem is one distinct product and its count in the cart
type LineItem struct {
	ProductID int
	Quantity  int
}

// Observer receives a copy of the cart contents after every change.
type Observer func(items []LineItem)

type subscription struct {
	id int
	fn Observer
}

// Cart is the in-memory cart store for one session. It holds at most one
// line item per product, in first-insertion order, and every quantity is at
// least 1. Safe for concurrent use.
type Cart struct {
	// notifyMu serializes mutations together with their notifications so
	// observers see snapshots in mutation order. Always taken before mu.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	id        string
	items     []LineItem
	observers []subscription
	nextSubID int
}

// NewCart creates an empty cart with a fresh session identifier
func NewCart() *Cart {
	return &Cart{
		id: uuid.NewString(),
	}
}

// ID returns the session identifier assigned when the cart was created
func (c *Cart) ID() string {
	return c.id
}

// Items returns the current line items in insertion order
func (c *Cart) Items() []LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshotLocked()
}

// Count returns the number of distinct products in the cart
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// TotalQuantity returns the sum of all line item quantities
func (c *Cart) TotalQuantity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// AddToCart increments the quantity of productID by one, appending a new
// line item with quantity 1 if the product is not in the cart yet.
// Observers are notified before AddToCart returns.
func (c *Cart) AddToCart(productID int) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()

	found := false
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		c.items = append(c.items, LineItem{ProductID: productID, Quantity: 1})
	}

	snapshot, observers := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()

	notify(observers, snapshot)
}

// Remove deletes the line item for productID. Removing a product that is not
// in the cart is a no-op and reports false.
func (c *Cart) Remove(productID int) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()

	idx := -1
	for i := range c.items {
		if c.items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)

	snapshot, observers := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()

	notify(observers, snapshot)
	return true
}

// Clear empties the cart. Observers are only notified if the cart held items.
func (c *Cart) Clear() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()

	if len(c.items) == 0 {
		c.mu.Unlock()
		return
	}
	c.items = nil

	snapshot, observers := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()

	notify(observers, snapshot)
}

// Subscribe registers an observer and returns a function that removes it.
// Observers run on the mutating goroutine after the cart lock is released,
// so they may read the cart, but they must not mutate it. Deliveries are
// serialized in mutation order.
func (c *Cart) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	c.observers = append(c.observers, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, sub := range c.observers {
			if sub.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) snapshotLocked() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) observersLocked() []Observer {
	fns := make([]Observer, len(c.observers))
	for i, sub := range c.observers {
		fns[i] = sub.fn
	}
	return fns
}

func notify(observers []Observer, snapshot []LineItem) {
	for _, fn := range observers {
		fn(snapshot)
	}
}
