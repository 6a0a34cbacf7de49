package canvas

import "sync"

// OrderEntry is one row of the layer-order list.
type OrderEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	URI         string `json:"uri"`
	IsProfile   bool   `json:"isProfile"`
}

// OrderList mirrors a Stack as a reorderable list. It holds no order of its
// own: it subscribes to the stack and forwards reorders to it, so the list
// and the compositor always observe the same committed order.
type OrderList struct {
	stack *Stack

	mu           sync.RWMutex
	version      uint64
	contributing []string
}

// NewOrderList attaches a list to stack.
func NewOrderList(stack *Stack) *OrderList {
	ol := &OrderList{stack: stack, version: stack.Version(), contributing: stack.Contributing()}
	stack.Subscribe(ol.onCommit)
	return ol
}

func (ol *OrderList) onCommit(ev OrderEvent) {
	ol.mu.Lock()
	defer ol.mu.Unlock()
	ol.version = ev.Version
	ol.contributing = ev.Contributing
}

// Entries returns the list rows in paint order.
func (ol *OrderList) Entries() []OrderEntry {
	views := ol.stack.Snapshot()
	entries := make([]OrderEntry, len(views))
	for i, v := range views {
		entries[i] = OrderEntry{ID: v.ID, DisplayName: v.DisplayName, URI: v.URI, IsProfile: v.IsProfile}
	}
	return entries
}

// Reorder is called when a drag-reorder completes. The full list replaces
// the stack's order and the contributing projection is returned.
func (ol *OrderList) Reorder(order []string) ([]string, error) {
	ev, err := ol.stack.Reorder(order)
	if err != nil {
		return nil, err
	}
	return ev.Contributing, nil
}

// Contributing returns the last committed item ids in paint order, without
// the profile sentinel.
func (ol *OrderList) Contributing() []string {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	out := make([]string, len(ol.contributing))
	copy(out, ol.contributing)
	return out
}

// Version returns the stack version the list last observed.
func (ol *OrderList) Version() uint64 {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	return ol.version
}
