// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package keytree

// EventKind identifies a change notification.
type EventKind int

const (
	EventRowsAboutToBeInserted EventKind = iota
	EventRowsInserted
	EventRowsAboutToBeRemoved
	EventRowsRemoved
	EventRowsAboutToBeMoved
	EventRowsMoved
	EventColumnsAboutToBeInserted
	EventColumnsInserted
	EventColumnsAboutToBeRemoved
	EventColumnsRemoved
	EventDataChanged
	EventHeaderChanged
)

func (k EventKind) String() string {
	switch k {
	case EventRowsAboutToBeInserted:
		return "rows-about-to-be-inserted"
	case EventRowsInserted:
		return "rows-inserted"
	case EventRowsAboutToBeRemoved:
		return "rows-about-to-be-removed"
	case EventRowsRemoved:
		return "rows-removed"
	case EventRowsAboutToBeMoved:
		return "rows-about-to-be-moved"
	case EventRowsMoved:
		return "rows-moved"
	case EventColumnsAboutToBeInserted:
		return "columns-about-to-be-inserted"
	case EventColumnsInserted:
		return "columns-inserted"
	case EventColumnsAboutToBeRemoved:
		return "columns-about-to-be-removed"
	case EventColumnsRemoved:
		return "columns-removed"
	case EventDataChanged:
		return "data-changed"
	case EventHeaderChanged:
		return "header-changed"
	default:
		return "unknown"
	}
}

// Event describes a change. First and Last bound the affected rows (or
// columns, or header sections); Column is set for data changes and
// Destination for moves.
type Event struct {
	Kind        EventKind
	Parent      Address
	First       int
	Last        int
	Column      int
	Destination int
}

// Structural reports whether the event changes the tree's shape, which
// invalidates every address held by observers.
func (e Event) Structural() bool {
	return e.Kind != EventDataChanged && e.Kind != EventHeaderChanged
}

// Observer receives change notifications synchronously.
type Observer func(Event)

type subscription struct {
	id uint64
	fn Observer
}

// notifier fans events out to observers and closes the current watch channel
// once a change completes.
type notifier struct {
	subs   []subscription
	nextID uint64
	watch  chan struct{}
}

func newNotifier() *notifier {
	return &notifier{watch: make(chan struct{})}
}

func (n *notifier) subscribe(fn Observer) func() {
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier) emit(e Event) {
	// observers may unsubscribe while being called
	subs := append([]subscription(nil), n.subs...)
	for _, s := range subs {
		s.fn(e)
	}
}

// done signals watchers that a change finished.
func (n *notifier) done() {
	close(n.watch)
	n.watch = make(chan struct{})
}

// txn brackets one mutation: begin is emitted when the txn is opened, the
// matching end event and the watch notification on commit.
type txn struct {
	n   *notifier
	end Event
}

func (n *notifier) begin(begin, end Event) *txn {
	n.emit(begin)
	return &txn{n: n, end: end}
}

func (x *txn) commit() {
	x.n.emit(x.end)
	x.n.done()
}

// Subscribe registers fn for every change notification. The returned func
// removes it.
func (t *Tree) Subscribe(fn Observer) (cancel func()) {
	return t.events.subscribe(fn)
}

// Watch returns a channel that is closed when the next change completes.
func (t *Tree) Watch() <-chan struct{} {
	return t.events.watch
}
