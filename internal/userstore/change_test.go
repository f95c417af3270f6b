package userstore

import (
	"context"
	"testing"

	"github.com/smileynet/userbook/internal/kv"
)

func TestSubscribe_ReceivesChanges(t *testing.T) {
	// Given a subscribed store
	s := newTestStore(t, kv.NewMemoryStorage())
	ch, cancel := s.Subscribe()
	defer cancel()

	// When records are added, edited and removed
	r := s.Add(fields("Jane"))
	if err := s.StartEdit(r.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(r.ID, fields("Janet")); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(r.ID); err != nil {
		t.Fatal(err)
	}

	// Then each mutation is reported in order
	want := []ChangeKind{ChangeAdded, ChangeEditing, ChangeUpdated, ChangeRemoved}
	for i, kind := range want {
		c := <-ch
		if c.Kind != kind {
			t.Errorf("change[%d] = %q, want %q", i, c.Kind, kind)
		}
		if c.ID != r.ID {
			t.Errorf("change[%d].ID = %q, want %q", i, c.ID, r.ID)
		}
	}
}

func TestSubscribe_DropsWhenBehind(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStorage())
	ch, cancel := s.Subscribe()
	defer cancel()

	// More changes than the buffer holds must not block the store.
	seed(s, subscriberBuffer*2)

	if got := len(ch); got != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", got, subscriberBuffer)
	}
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStorage())
	ch, cancel := s.Subscribe()

	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	s.Add(fields("Jane")) // must not panic on a cancelled subscriber
}

func TestSubscribe_CloseClosesChannels(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemoryStorage())
	ch, cancel := s.Subscribe()
	defer cancel()

	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}

	late, _ := s.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing to a closed store should yield a closed channel")
	}
}

func TestLoad_Notifies(t *testing.T) {
	s := New(kv.NewMemoryStorage())
	defer s.Close(context.Background())
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Load(context.Background())

	if c := <-ch; c.Kind != ChangeLoaded {
		t.Errorf("change = %q, want %q", c.Kind, ChangeLoaded)
	}
}
