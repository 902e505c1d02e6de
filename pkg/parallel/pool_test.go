package parallel

import (
	"sync/atomic"
	"testing"
)

// TestPool_RunsAllTasks tests basic task execution
func TestPool_RunsAllTasks(t *testing.T) {
	pool := NewPool(4)

	var count int64
	for i := 0; i < 100; i++ {
		if !pool.Submit(func() { atomic.AddInt64(&count, 1) }) {
			t.Fatal("Submit refused while pool open")
		}
	}
	pool.Close()

	if count != 100 {
		t.Errorf("expected 100 tasks run, got %d", count)
	}
}

// TestPool_SubmitAfterClose tests the closed-pool contract
func TestPool_SubmitAfterClose(t *testing.T) {
	pool := NewPool(1)
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Submit should report false after Close")
	}
}

// TestPool_CloseTwice tests idempotent shutdown
func TestPool_CloseTwice(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	pool.Close() // must not panic
}

// TestPool_PanicDoesNotKillWorker tests task panic recovery
func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	pool := NewPool(1)

	var ran int64
	pool.Submit(func() { panic("bad task") })
	pool.Submit(func() { atomic.AddInt64(&ran, 1) })
	pool.Close()

	if ran != 1 {
		t.Error("worker should survive a panicking task")
	}
}

// TestForEachIndex_CoversEveryIndex tests the scatter helper
func TestForEachIndex_CoversEveryIndex(t *testing.T) {
	const n = 57
	seen := make([]int64, n)

	ForEachIndex(4, n, func(i int) {
		atomic.AddInt64(&seen[i], 1)
	})

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

// TestForEachIndex_ZeroTasks tests the empty case
func TestForEachIndex_ZeroTasks(t *testing.T) {
	ForEachIndex(4, 0, func(i int) {
		t.Error("no task should run")
	})
}

// TestNewPool_DefaultsWorkers tests the CPU fallback
func TestNewPool_DefaultsWorkers(t *testing.T) {
	pool := NewPool(0)
	defer pool.Close()
	if pool.Workers() < 1 {
		t.Errorf("expected at least one worker, got %d", pool.Workers())
	}
}
