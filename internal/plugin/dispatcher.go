package plugin

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ayusman/pinchball/internal/event"
)

const (
	// DefaultTimeout bounds a single hook run.
	DefaultTimeout = 5 * time.Second
	// QueueSize bounds pending hook runs. Events beyond it are dropped.
	QueueSize = 64
)

// Job is one hook invocation.
type Job struct {
	Plugin  *Plugin
	Request Request
}

// Dispatcher runs hooks for game events on a small worker pool so the
// frame pipeline never waits on a plugin.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	dropped int
	ran     int
	failed  int
}

// NewDispatcher creates a dispatcher and starts workers goroutines.
func NewDispatcher(m *Manager, e *Executor, workers int) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		manager:  m,
		executor: e,
		queue:    make(chan Job, QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < max(workers, 1); i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Notify queues a run for every subscriber of each event. score is the
// session score after the events; sessionID may be empty. It never blocks.
func (d *Dispatcher) Notify(evs []event.Event, tick uint64, score int, sessionID string) int {
	queued := 0
	for _, e := range evs {
		kind := e.Kind.String()
		for _, p := range d.manager.Subscribers(kind) {
			job := Job{Plugin: p, Request: Request{
				Event:     kind,
				BallID:    e.BallID,
				Points:    e.Score,
				Score:     score,
				Tick:      tick,
				SessionID: sessionID,
			}}
			select {
			case d.queue <- job:
				queued++
			default:
				d.mu.Lock()
				d.dropped++
				d.mu.Unlock()
			}
		}
	}
	return queued
}

// Stats returns how many runs finished, failed and were dropped.
func (d *Dispatcher) Stats() (ran, failed, dropped int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ran, d.failed, d.dropped
}

// Close stops accepting work, kills running hooks and waits for the
// workers. Queued runs are discarded.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case job := <-d.queue:
			d.run(job)
		}
	}
}

func (d *Dispatcher) run(job Job) {
	resp, err := d.executor.Execute(d.ctx, job.Plugin, &job.Request)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.ran++
	switch {
	case err != nil:
		d.failed++
		log.Printf("Hook %s on %s: %v", job.Plugin.Manifest.Name, job.Request.Event, err)
	case !resp.Success:
		d.failed++
		log.Printf("Hook %s on %s reported: %s", job.Plugin.Manifest.Name, job.Request.Event, resp.Error)
	}
}
