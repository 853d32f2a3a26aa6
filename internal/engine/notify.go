package engine

import "sync"

// ChangeListener receives every primitive document delta.
type ChangeListener func(d Delta)

// Listener receives a notification without a payload.
type Listener func()

type listenerKind uint8

const (
	kindChange listenerKind = iota
	kindAfterEdit
	kindSelection
	kindSwap
)

type listenerEntry struct {
	id     uint64
	kind   listenerKind
	change ChangeListener
	fn     Listener
}

// listenerTable keeps listeners in registration order.
type listenerTable struct {
	mu      sync.Mutex
	nextID  uint64
	entries []listenerEntry
}

func (t *listenerTable) add(entry listenerEntry) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	entry.id = t.nextID
	t.entries = append(t.entries, entry)
	return entry.id
}

func (t *listenerTable) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, entry := range t.entries {
		if entry.id == id {
			t.entries = append(t.entries[:i:i], t.entries[i+1:]...)
			return
		}
	}
}

func (t *listenerTable) snapshot(kind listenerKind) []listenerEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []listenerEntry
	for _, entry := range t.entries {
		if entry.kind == kind {
			out = append(out, entry)
		}
	}
	return out
}

// Subscription represents an active listener registration.
type Subscription struct {
	id    uint64
	table *listenerTable
}

// Unsubscribe removes the listener. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.table == nil {
		return
	}
	s.table.remove(s.id)
	s.table = nil
}

// OnChange registers a listener for every insert and remove delta.
func (e *Engine) OnChange(fn ChangeListener) *Subscription {
	id := e.listeners.add(listenerEntry{kind: kindChange, change: fn})
	return &Subscription{id: id, table: &e.listeners}
}

// OnAfterEdit registers a listener called once an outermost edit operation
// has completed.
func (e *Engine) OnAfterEdit(fn Listener) *Subscription {
	id := e.listeners.add(listenerEntry{kind: kindAfterEdit, fn: fn})
	return &Subscription{id: id, table: &e.listeners}
}

// OnSelectionChange registers a listener called when the selections change.
func (e *Engine) OnSelectionChange(fn Listener) *Subscription {
	id := e.listeners.add(listenerEntry{kind: kindSelection, fn: fn})
	return &Subscription{id: id, table: &e.listeners}
}

// OnSwap registers a listener called before the document is replaced by Load.
func (e *Engine) OnSwap(fn Listener) *Subscription {
	id := e.listeners.add(listenerEntry{kind: kindSwap, fn: fn})
	return &Subscription{id: id, table: &e.listeners}
}

func (e *Engine) notifyChange(d Delta) {
	for _, entry := range e.listeners.snapshot(kindChange) {
		entry.change(d)
	}
}

func (e *Engine) notifyAfterEdit() {
	e.notify(kindAfterEdit)
}

func (e *Engine) notifySelection() {
	e.notify(kindSelection)
}

func (e *Engine) notifySwap() {
	e.notify(kindSwap)
}

func (e *Engine) notify(kind listenerKind) {
	for _, entry := range e.listeners.snapshot(kind) {
		entry.fn()
	}
}
