package userstore

import (
	"context"
	"time"
)

// saveTimeout bounds a single background write.
const saveTimeout = 10 * time.Second

// saveRequest is either a snapshot to write or, when ack is non-nil, a flush
// marker acknowledged once every earlier request has been handled.
type saveRequest struct {
	snapshot string
	ack      chan struct{}
}

// persister writes snapshots on a background goroutine in the order they
// were queued. It does not coalesce: each mutation produces one write.
type persister struct {
	reqs chan saveRequest
	done chan struct{}
	save func(ctx context.Context, snapshot string)
}

func newPersister(save func(ctx context.Context, snapshot string)) *persister {
	p := &persister{
		reqs: make(chan saveRequest, 32),
		done: make(chan struct{}),
		save: save,
	}
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for req := range p.reqs {
		if req.ack != nil {
			close(req.ack)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		p.save(ctx, req.snapshot)
		cancel()
	}
}

// enqueue queues a snapshot. It blocks only when the queue is full.
func (p *persister) enqueue(snapshot string) {
	p.reqs <- saveRequest{snapshot: snapshot}
}

// flush waits until every snapshot queued before the call has been written.
func (p *persister) flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.reqs <- saveRequest{ack: ack}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting requests and waits for queued writes to finish.
func (p *persister) close(ctx context.Context) error {
	close(p.reqs)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
