// Package parallel runs independent analysis tasks across a fixed pool of
// workers. Contingency scanning is embarrassingly parallel: every task owns
// its own inputs and its own result slot, so the pool needs no shared state
// beyond the task queue itself.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool. Tasks are plain closures; a panicking
// task is recovered so it cannot take a worker down with it.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
}

// NewPool starts a pool with the given number of workers. Zero or negative
// means one worker per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*2),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		runRecovered(task)
	}
}

func runRecovered(task func()) {
	defer func() {
		if r := recover(); r != nil {
			// A panicking task loses its result slot but must not take
			// the worker down with it.
			fmt.Printf("parallel: task panic recovered: %v\n", r)
		}
	}()
	task()
}

// Submit queues a task. It reports false once the pool has been closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.tasks <- task
	return true
}

// Close stops accepting tasks and blocks until queued work has drained.
// Safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// ForEachIndex runs fn for every index in [0, n) across the pool and waits
// for all of them. Each invocation must write only to its own slot of any
// shared output slice; with that discipline no locking is needed and the
// completion order cannot influence the result.
func ForEachIndex(workers, n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	pool := NewPool(workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			fn(i)
		})
	}
	wg.Wait()
	pool.Close()
}
