// Package worker runs remote searches off the UI goroutine, one at a time.
package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/debuglog"
	"github.com/pders01/cratuity/internal/events"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("worker stopped")

// Transport performs one blocking remote search.
type Transport interface {
	Search(query string, page, count uint32, sort crates.Sort) (*crates.SearchResult, error)
}

// Publisher receives the outcome of every request.
type Publisher interface {
	Publish(ev events.Event) bool
}

// Worker owns the transport and serves requests in submission order.
type Worker struct {
	transport Transport
	out       Publisher

	requests chan cache.FetchRequest
	quit     chan struct{}
	stopOnce sync.Once
	started  sync.Once
	wg       sync.WaitGroup
}

// New creates a worker. Call Start before submitting.
func New(transport Transport, out Publisher) *Worker {
	return &Worker{
		transport: transport,
		out:       out,
		requests:  make(chan cache.FetchRequest, 1),
		quit:      make(chan struct{}),
	}
}

// Start launches the worker goroutine. Extra calls are no-ops.
func (w *Worker) Start() {
	w.started.Do(func() {
		w.wg.Add(1)
		go w.run()
	})
}

// Submit queues a request. It returns immediately when the slot is free and
// otherwise blocks until the worker takes the queued request.
func (w *Worker) Submit(req cache.FetchRequest) error {
	select {
	case <-w.quit:
		return ErrStopped
	default:
	}

	select {
	case w.requests <- req:
		debuglog.Debugf("queued fetch %s", req)
		return nil
	case <-w.quit:
		return ErrStopped
	}
}

// TrySubmit queues a request only if the slot is free. It reports whether
// the request was taken and never blocks.
func (w *Worker) TrySubmit(req cache.FetchRequest) (bool, error) {
	select {
	case <-w.quit:
		return false, ErrStopped
	default:
	}

	select {
	case w.requests <- req:
		debuglog.Debugf("queued fetch %s", req)
		return true, nil
	default:
		return false, nil
	}
}

// Stop rejects new submissions and waits for the in-flight request, if any.
// Requests still queued are discarded.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.quit:
			return
		case req := <-w.requests:
			w.handle(req)
		}
	}
}

func (w *Worker) handle(req cache.FetchRequest) {
	logger := debuglog.WithFields(map[string]interface{}{
		"query": req.Query,
		"sort":  req.Sort.Token(),
		"page":  req.Page,
		"count": req.Count,
	})

	start := time.Now()
	res, err := w.transport.Search(req.Query, req.Page, req.Count, req.Sort)
	if err != nil {
		logger.Warnf("fetch failed after %s: %v", time.Since(start), err)
		w.out.Publish(events.FetchFailed{Request: req, Err: err})
		return
	}

	logger.Infof("fetched %d of %d crates in %s", len(res.Crates), res.Total, time.Since(start))
	w.out.Publish(events.Results{
		Request: req,
		Total:   res.Total,
		Crates:  res.Crates,
	})
}
