// Package engine offloads the dashboard's filter, sort and question-count
// operations to a single background worker goroutine, keeping the calling
// (rendering) goroutine free while large record sets are crunched.
//
// The worker is a performance layer, never a correctness switch: every
// operation has a synchronous fallback using the same pkg/visit functions,
// taken when the worker is unavailable or a per-operation timeout elapses.
// Both paths therefore produce identical outputs for identical inputs.
//
// Requests and responses are matched by a per-request UUID, so concurrent
// calls of the same operation cannot cross-resolve each other's results.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
)

// Per-operation timeouts after which the caller abandons the worker and
// computes synchronously.
const (
	DefaultFilterTimeout = 5 * time.Second
	DefaultSortTimeout   = 3 * time.Second
	DefaultCountTimeout  = 2 * time.Second
)

const (
	actionFilter = "filter"
	actionSort   = "sort"
	actionCount  = "countQuestions"
)

// request is the immutable snapshot sent to the worker. Records are copied
// before sending; since every field is a string there is no shared mutable
// state across the boundary.
type request struct {
	id      string
	action  string
	records []visit.Record

	criteria visit.Criteria // filter
	field    string         // sort
	order    string         // sort
	month    string         // count
	officer  string         // count
}

type response struct {
	id      string
	records []visit.Record
	count   int
	err     error
}

// Engine owns the worker goroutine and the pending-request table. The
// worker is created lazily on first use and torn down by Close.
type Engine struct {
	logger *slog.Logger

	filterTimeout time.Duration
	sortTimeout   time.Duration
	countTimeout  time.Duration

	mu       sync.Mutex
	requests chan request
	pending  map[string]chan response
	done     chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTimeouts overrides the per-operation fallback timeouts.
func WithTimeouts(filter, sort, count time.Duration) Option {
	return func(e *Engine) {
		e.filterTimeout = filter
		e.sortTimeout = sort
		e.countTimeout = count
	}
}

// New creates an Engine. The worker goroutine starts on first use.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        slog.Default(),
		filterTimeout: DefaultFilterTimeout,
		sortTimeout:   DefaultSortTimeout,
		countTimeout:  DefaultCountTimeout,
		pending:       make(map[string]chan response),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Filter narrows records per c on the worker, falling back to a direct
// visit.Filter call on timeout or when the worker is unavailable.
func (e *Engine) Filter(ctx context.Context, records []visit.Record, c visit.Criteria) ([]visit.Record, error) {
	resp, err := e.dispatch(ctx, request{
		action:   actionFilter,
		records:  snapshot(records),
		criteria: c,
	}, e.filterTimeout)
	if err != nil {
		return nil, err
	}
	return resp.records, nil
}

// Sort orders records by field/direction on the worker, with the same
// fallback semantics as Filter.
func (e *Engine) Sort(ctx context.Context, records []visit.Record, field, direction string) ([]visit.Record, error) {
	resp, err := e.dispatch(ctx, request{
		action:  actionSort,
		records: snapshot(records),
		field:   field,
		order:   direction,
	}, e.sortTimeout)
	if err != nil {
		return nil, err
	}
	return resp.records, nil
}

// CountQuestions counts discrete questions on the worker, with the same
// fallback semantics as Filter.
func (e *Engine) CountQuestions(ctx context.Context, records []visit.Record, month, officer string) (int, error) {
	resp, err := e.dispatch(ctx, request{
		action:  actionCount,
		records: snapshot(records),
		month:   month,
		officer: officer,
	}, e.countTimeout)
	if err != nil {
		return 0, err
	}
	return resp.count, nil
}

// Close tears the worker down. Subsequent calls compute synchronously.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.done != nil {
		close(e.done)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// dispatch sends req to the worker and waits for its response, the context,
// or the timeout — whichever comes first. Timeout and worker unavailability
// both resolve through the synchronous path.
func (e *Engine) dispatch(ctx context.Context, req request, timeout time.Duration) (response, error) {
	if err := ctx.Err(); err != nil {
		return response{}, err
	}

	req.id = uuid.NewString()
	ch, ok := e.register(req.id)
	if !ok {
		// No worker: compute in-process, same algorithms.
		return run(req), nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.requests <- req:
	case <-e.done:
		e.unregister(req.id)
		return run(req), nil
	case <-timer.C:
		e.unregister(req.id)
		e.logger.Warn("worker send timed out, computing synchronously", "action", req.action)
		return run(req), nil
	case <-ctx.Done():
		e.unregister(req.id)
		return response{}, ctx.Err()
	}

	select {
	case resp := <-ch:
		if resp.err != nil {
			return response{}, &ComputationError{Action: req.action, Err: resp.err}
		}
		return resp, nil
	case <-timer.C:
		e.unregister(req.id)
		e.logger.Warn("worker timed out, computing synchronously", "action", req.action)
		return run(req), nil
	case <-ctx.Done():
		e.unregister(req.id)
		return response{}, ctx.Err()
	}
}

// register lazily starts the worker and records a response channel for id.
// Returns ok=false when the engine is closed (the synchronous path).
func (e *Engine) register(id string) (chan response, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, false
	}
	if e.requests == nil {
		e.requests = make(chan request)
		e.done = make(chan struct{})
		e.wg.Add(1)
		go e.work()
		e.logger.Debug("worker started")
	}
	ch := make(chan response, 1)
	e.pending[id] = ch
	return ch, true
}

func (e *Engine) unregister(id string) {
	e.mu.Lock()
	delete(e.pending, id)
	e.mu.Unlock()
}

// deliver routes a worker response to its waiting caller by request id.
// A response whose caller already gave up (timeout, cancellation) is dropped.
func (e *Engine) deliver(resp response) {
	e.mu.Lock()
	ch, ok := e.pending[resp.id]
	delete(e.pending, resp.id)
	e.mu.Unlock()
	if ok {
		ch <- resp
	}
}

func (e *Engine) work() {
	defer e.wg.Done()
	for {
		select {
		case req := <-e.requests:
			e.deliver(run(req))
		case <-e.done:
			return
		}
	}
}

// run executes one operation in-process. It is the single implementation
// behind both the worker and the fallback path.
func run(req request) (resp response) {
	resp.id = req.id
	defer func() {
		if r := recover(); r != nil {
			resp = response{id: req.id, err: fmt.Errorf("panic in %s: %v", req.action, r)}
		}
	}()

	switch req.action {
	case actionFilter:
		resp.records = visit.Filter(req.records, req.criteria)
	case actionSort:
		resp.records = visit.Sort(req.records, req.field, req.order)
	case actionCount:
		resp.count = visit.CountQuestions(req.records, req.month, req.officer)
	default:
		resp.err = fmt.Errorf("unknown action %q", req.action)
	}
	return resp
}

// snapshot copies records so the worker never aliases the caller's slice.
func snapshot(records []visit.Record) []visit.Record {
	out := make([]visit.Record, len(records))
	copy(out, records)
	return out
}
