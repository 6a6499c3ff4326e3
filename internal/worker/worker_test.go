package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/events"
)

type fakeTransport struct {
	mu    sync.Mutex
	calls []cache.FetchRequest
	gate  chan struct{}
	fail  map[uint32]error
}

func (f *fakeTransport) Search(query string, page, count uint32, sort crates.Sort) (*crates.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cache.FetchRequest{Query: query, Sort: sort, Page: page, Count: count})
	gate := f.gate
	err := f.fail[page]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	out := make([]crates.Crate, count)
	for i := range out {
		out[i] = crates.Crate{Name: query}
	}
	return &crates.SearchResult{Total: 500, Crates: out}, nil
}

func (f *fakeTransport) Calls() []cache.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cache.FetchRequest(nil), f.calls...)
}

func req(page uint32) cache.FetchRequest {
	return cache.FetchRequest{Query: "serde", Sort: crates.SortRelevance, Page: page, Count: 50}
}

func TestSuccessPublishesResults(t *testing.T) {
	tr := &fakeTransport{}
	stream := events.NewStream(4)
	defer stream.Close()

	w := New(tr, stream)
	w.Start()
	defer w.Stop()

	require.NoError(t, w.Submit(req(1)))

	ev, ok := stream.Next(time.Second)
	require.True(t, ok)
	res, isResults := ev.(events.Results)
	require.True(t, isResults)
	assert.Equal(t, req(1), res.Request)
	assert.Equal(t, uint32(500), res.Total)
	assert.Len(t, res.Crates, 50)
}

func TestFailurePublishesNoResults(t *testing.T) {
	boom := errors.New("connection refused")
	tr := &fakeTransport{fail: map[uint32]error{1: boom}}
	stream := events.NewStream(4)
	defer stream.Close()

	w := New(tr, stream)
	w.Start()
	defer w.Stop()

	require.NoError(t, w.Submit(req(1)))

	ev, ok := stream.Next(time.Second)
	require.True(t, ok)
	failed, isFailed := ev.(events.FetchFailed)
	require.True(t, isFailed)
	assert.Equal(t, req(1), failed.Request)
	assert.ErrorIs(t, failed.Err, boom)

	_, ok = stream.Next(30 * time.Millisecond)
	assert.False(t, ok, "no Results event after a failure")
}

func TestRequestsServedInSubmissionOrder(t *testing.T) {
	tr := &fakeTransport{gate: make(chan struct{})}
	stream := events.NewStream(8)
	defer stream.Close()

	w := New(tr, stream)
	w.Start()

	// First request is picked up and blocks in the transport.
	require.NoError(t, w.Submit(req(1)))
	require.Eventually(t, func() bool { return len(tr.Calls()) == 1 }, time.Second, time.Millisecond)

	// Second fills the slot without blocking.
	submitted := make(chan struct{})
	go func() {
		_ = w.Submit(req(2))
		close(submitted)
	}()
	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked with a free slot")
	}

	// Third blocks until the slot drains.
	third := make(chan struct{})
	go func() {
		_ = w.Submit(req(3))
		close(third)
	}()
	select {
	case <-third:
		t.Fatal("Submit should block while the slot is full")
	case <-time.After(30 * time.Millisecond):
	}

	close(tr.gate)
	select {
	case <-third:
	case <-time.After(time.Second):
		t.Fatal("Submit never unblocked")
	}

	for want := uint32(1); want <= 3; want++ {
		ev, ok := stream.Next(time.Second)
		require.True(t, ok)
		assert.Equal(t, want, ev.(events.Results).Request.Page)
	}
	w.Stop()

	calls := tr.Calls()
	require.Len(t, calls, 3)
	for i, c := range calls {
		assert.Equal(t, uint32(i+1), c.Page)
	}
}

func TestStopWaitsForInFlight(t *testing.T) {
	tr := &fakeTransport{gate: make(chan struct{})}
	stream := events.NewStream(4)
	defer stream.Close()

	w := New(tr, stream)
	w.Start()
	require.NoError(t, w.Submit(req(1)))
	require.Eventually(t, func() bool { return len(tr.Calls()) == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a fetch was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(tr.gate)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned")
	}

	ev, ok := stream.Next(time.Second)
	require.True(t, ok)
	assert.IsType(t, events.Results{}, ev)
}

func TestSubmitAfterStop(t *testing.T) {
	w := New(&fakeTransport{}, events.NewStream(1))
	w.Start()
	w.Stop()

	assert.ErrorIs(t, w.Submit(req(1)), ErrStopped)
	w.Stop()
}

func TestTrySubmitNeverBlocks(t *testing.T) {
	tr := &fakeTransport{gate: make(chan struct{})}
	stream := events.NewStream(8)
	defer stream.Close()

	w := New(tr, stream)
	w.Start()

	taken, err := w.TrySubmit(req(1))
	require.NoError(t, err)
	require.True(t, taken)
	require.Eventually(t, func() bool { return len(tr.Calls()) == 1 }, time.Second, time.Millisecond)

	taken, err = w.TrySubmit(req(2))
	require.NoError(t, err)
	assert.True(t, taken, "slot is free while the first fetch is in flight")

	taken, err = w.TrySubmit(req(3))
	require.NoError(t, err)
	assert.False(t, taken, "slot is occupied by page 2")

	close(tr.gate)
	for want := uint32(1); want <= 2; want++ {
		ev, ok := stream.Next(time.Second)
		require.True(t, ok)
		assert.Equal(t, want, ev.(events.Results).Request.Page)
	}

	taken, err = w.TrySubmit(req(3))
	require.NoError(t, err)
	assert.True(t, taken)
	w.Stop()

	_, err = w.TrySubmit(req(4))
	assert.ErrorIs(t, err, ErrStopped)
}
