// Package workerpool bounds how many bridge invocations run at once.
// Spawning through the interop layer is comparatively expensive, so the
// pool caps simultaneous process creation.
package workerpool

import (
	"context"
	"runtime"
	"sync"

	"github.com/sibikrish3000/winvoke/pkg/bridge"
)

// RunFunc executes one invocation. Injectable so tests can run the
// pool without spawning processes.
type RunFunc func(ctx context.Context, req bridge.Request) (bridge.Outcome, error)

// Result pairs an invocation with how it ended.
type Result struct {
	Request bridge.Request
	Outcome bridge.Outcome
	Err     error
}

// Pool runs submitted requests on a fixed number of workers.
type Pool struct {
	run     RunFunc
	jobs    chan bridge.Request
	results chan Result
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New starts a pool with the given concurrency; values <= 0 default to
// the CPU count.
func New(concurrency int, run RunFunc) *Pool {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		run:     run,
		jobs:    make(chan bridge.Request, concurrency),
		results: make(chan Result, concurrency),
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for req := range p.jobs {
		if err := p.ctx.Err(); err != nil {
			p.results <- Result{Request: req, Err: err}
			continue
		}
		outcome, err := p.run(p.ctx, req)
		p.results <- Result{Request: req, Outcome: outcome, Err: err}
	}
}

// Submit queues a request. Blocks when the queue is full.
func (p *Pool) Submit(req bridge.Request) {
	p.jobs <- req
}

// Results yields completed invocations. The channel closes once
// Shutdown has been called and all in-flight work finished.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown declares that no more requests will be submitted and waits
// for in-flight invocations to finish.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}

// Cancel aborts pending work; queued requests report the context error.
func (p *Pool) Cancel() {
	p.cancel()
}
