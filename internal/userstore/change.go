package userstore

// ChangeKind identifies what a Change notification reports.
type ChangeKind string

const (
	ChangeLoaded  ChangeKind = "loaded"
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
	ChangeEditing ChangeKind = "editing" // Cursor moved or cleared.
)

// Change is sent to subscribers after the list or the cursor changes.
type Change struct {
	Kind ChangeKind
	ID   string // Affected record, "" for loads and cleared cursors.
}

// subscriberBuffer is the number of undelivered changes kept per subscriber.
// Further changes are dropped until the subscriber catches up; receivers
// re-read the store on every notification, so nothing is lost but detail.
const subscriberBuffer = 16

// Subscribe returns a channel receiving a Change after every mutation and a
// function that cancels the subscription. The channel is closed on cancel or
// when the store is closed.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Store) notifyLocked(c Change) {
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
