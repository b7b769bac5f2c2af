package telegram

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeSource struct {
	batches [][]Update
	offsets []int64
	failAt  int
	calls   int
	cancel  context.CancelFunc
}

func (f *fakeSource) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	f.calls++
	f.offsets = append(f.offsets, offset)
	if f.failAt > 0 && f.calls == f.failAt {
		f.cancel()
		return nil, fmt.Errorf("poll failed")
	}
	if len(f.batches) == 0 {
		f.cancel()
		return nil, ctx.Err()
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

type recordingHandler struct {
	updates []Update
}

func (r *recordingHandler) HandleUpdate(ctx context.Context, update Update) {
	r.updates = append(r.updates, update)
}

func TestPollerAdvancesOffset(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{
		batches: [][]Update{
			{{UpdateID: 3}, {UpdateID: 4}},
			{{UpdateID: 9}},
		},
		cancel: cancel,
	}
	handler := &recordingHandler{}

	if err := NewPoller(source, handler, time.Second).Run(ctx); err != nil {
		t.Fatalf("run poller: %v", err)
	}

	if len(handler.updates) != 3 {
		t.Fatalf("handled %d updates, want 3", len(handler.updates))
	}
	if len(source.offsets) < 3 {
		t.Fatalf("offsets = %v, want at least 3 polls", source.offsets)
	}
	if source.offsets[0] != 0 || source.offsets[1] != 5 || source.offsets[2] != 10 {
		t.Fatalf("offsets = %v", source.offsets)
	}
}

func TestPollerStopsOnFailedPollWhenCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{failAt: 1, cancel: cancel}
	handler := &recordingHandler{}

	done := make(chan error, 1)
	go func() {
		done <- NewPoller(source, handler, time.Second).Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run poller: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	if len(handler.updates) != 0 {
		t.Fatalf("handled %d updates, want 0", len(handler.updates))
	}
}

func TestPollerStopsWhenAlreadyCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &fakeSource{cancel: cancel}

	if err := NewPoller(source, &recordingHandler{}, time.Second).Run(ctx); err != nil {
		t.Fatalf("run poller: %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("polled %d times after cancel, want 0", source.calls)
	}
}
