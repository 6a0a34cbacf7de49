package canvas

import (
	"image"
	"sync"

	"armario-outfits/apperr"
)

// LayerView is a read-only copy of a layer's state at one point in time.
type LayerView struct {
	ID          string  `json:"id"`
	URI         string  `json:"uri"`
	DisplayName string  `json:"displayName"`
	Position    Point   `json:"position"`
	Scale       float64 `json:"scale"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Loaded      bool    `json:"loaded"`
	IsProfile   bool    `json:"isProfile"`

	img image.Image
}

// OrderEvent is delivered to subscribers after every committed order change.
type OrderEvent struct {
	Version      uint64
	Order        []string
	Contributing []string
}

// Stack is the single owner of layer paint order. The first layer paints
// first (bottom). Both the layer-order list and the compositor read from it;
// only its methods mutate order.
type Stack struct {
	mu          sync.Mutex
	layers      []*Layer
	version     uint64
	subscribers []func(OrderEvent)
}

// NewStack returns a stack seeded with layers in the given order.
// Later duplicates of an id are dropped.
func NewStack(layers []*Layer) *Stack {
	s := &Stack{}
	seen := make(map[string]bool, len(layers))
	for _, l := range layers {
		if l == nil || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		s.layers = append(s.layers, l)
	}
	return s
}

// Subscribe registers fn to receive every committed order change. fn runs
// while the stack is locked and must not call back into the stack.
func (s *Stack) Subscribe(fn func(OrderEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Len returns the number of layers, profile included.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// Version returns the number of committed order changes.
func (s *Stack) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Order returns the layer ids in paint order.
func (s *Stack) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderLocked()
}

// Contributing returns the ids in paint order without the profile sentinel.
func (s *Stack) Contributing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contributingLocked()
}

// Has reports whether a layer with id is in the stack.
func (s *Stack) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// AddFront prepends l so it paints beneath every other layer.
func (s *Stack) AddFront(l *Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(l.ID) >= 0 {
		return apperr.New(apperr.CodeDuplicate, "layer %q already in stack", l.ID)
	}
	s.layers = append([]*Layer{l}, s.layers...)
	s.commitLocked()
	return nil
}

// Remove deletes the layer with id. It removes exactly one layer.
func (s *Stack) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return apperr.New(apperr.CodeLayerNotFound, "layer %q not in stack", id)
	}
	s.layers = append(s.layers[:i:i], s.layers[i+1:]...)
	s.commitLocked()
	return nil
}

// Reorder replaces the paint order. order must be a permutation of the
// current ids; the profile layer is treated like any other.
func (s *Stack) Reorder(order []string) (OrderEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order) != len(s.layers) {
		return OrderEvent{}, apperr.New(apperr.CodeInvalidOrder,
			"order has %d ids, stack has %d layers", len(order), len(s.layers))
	}
	byID := make(map[string]*Layer, len(s.layers))
	for _, l := range s.layers {
		byID[l.ID] = l
	}
	next := make([]*Layer, 0, len(order))
	for _, id := range order {
		l, ok := byID[id]
		if !ok {
			return OrderEvent{}, apperr.New(apperr.CodeInvalidOrder, "unknown or repeated layer id %q", id)
		}
		delete(byID, id)
		next = append(next, l)
	}
	s.layers = next
	return s.commitLocked(), nil
}

// With runs fn on the layer with id while the stack is locked, so gesture
// updates on a layer are applied one at a time.
func (s *Stack) With(id string, fn func(*Layer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return apperr.New(apperr.CodeLayerNotFound, "layer %q not in stack", id)
	}
	fn(s.layers[i])
	return nil
}

// Snapshot copies every layer's state in paint order.
func (s *Stack) Snapshot() []LayerView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]LayerView, len(s.layers))
	for i, l := range s.layers {
		w, h := l.IntrinsicSize()
		views[i] = LayerView{
			ID:          l.ID,
			URI:         l.URI,
			DisplayName: l.DisplayName,
			Position:    l.Position,
			Scale:       l.Scale,
			Width:       w,
			Height:      h,
			Loaded:      l.Loaded(),
			IsProfile:   l.IsProfile(),
			img:         l.Image(),
		}
	}
	return views
}

func (s *Stack) commitLocked() OrderEvent {
	s.version++
	ev := OrderEvent{
		Version:      s.version,
		Order:        s.orderLocked(),
		Contributing: s.contributingLocked(),
	}
	for _, fn := range s.subscribers {
		fn(ev)
	}
	return ev
}

func (s *Stack) indexLocked(id string) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Stack) orderLocked() []string {
	ids := make([]string, len(s.layers))
	for i, l := range s.layers {
		ids[i] = l.ID
	}
	return ids
}

func (s *Stack) contributingLocked() []string {
	ids := make([]string, 0, len(s.layers))
	for _, l := range s.layers {
		if !l.IsProfile() {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
