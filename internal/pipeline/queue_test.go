package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestProcessorQueueProcessesJobs(t *testing.T) {
	store := newFakeInvoiceStore()
	p := NewProcessor(&fakeParser{parsed: someParsed()}, store, &fakeNotifier{ok: true}, nil, nil)
	q := NewProcessorQueue(p, nil, WithWorkers(2), WithQueueSize(8), WithProcessTimeout(time.Minute))

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		err := q.Enqueue(context.Background(), Job{
			InvoiceID:    ids[i],
			DocumentPath: writeDocument(t),
			SubmittedAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, id := range ids {
		if store.completed[id] == nil {
			t.Errorf("invoice %s not processed before shutdown", id)
		}
	}
}

func TestProcessorQueueEnqueueAfterShutdown(t *testing.T) {
	store := newFakeInvoiceStore()
	p := NewProcessor(&fakeParser{parsed: someParsed()}, store, &fakeNotifier{ok: true}, nil, nil)
	q := NewProcessorQueue(p, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	q.Shutdown(ctx) // idempotent

	err := q.Enqueue(context.Background(), Job{InvoiceID: uuid.New(), DocumentPath: "unused"})
	if err != nil {
		t.Fatalf("Enqueue after shutdown must be a soft no-op, got %v", err)
	}
}
