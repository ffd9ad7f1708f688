package workers_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tradevault/journal-backend/internal/workers"
	"go.uber.org/zap"
)

func TestPoolExecutesTasks(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.DefaultPoolConfig("test"))
	pool.Start()
	defer pool.Stop()

	var done sync.WaitGroup
	var count atomic.Int64
	for i := 0; i < 10; i++ {
		done.Add(1)
		if !pool.Submit(func() error {
			defer done.Done()
			count.Add(1)
			return nil
		}) {
			t.Fatal("Submit failed on a running pool")
		}
	}
	done.Wait()

	if count.Load() != 10 {
		t.Errorf("Expected 10 executions, got %d", count.Load())
	}
	if stats := pool.Stats(); stats.Completed != 10 || stats.Failed != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.DefaultPoolConfig("test"))

	if pool.Submit(func() error { return nil }) {
		t.Error("Expected Submit to fail before Start")
	}

	pool.Start()
	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if pool.Submit(func() error { return nil }) {
		t.Error("Expected Submit to fail after Stop")
	}
}

func TestPoolCoalescesKeyedTasks(t *testing.T) {
	config := workers.DefaultPoolConfig("test")
	config.NumWorkers = 1
	pool := workers.NewPool(zap.NewNop(), config)
	pool.Start()
	defer pool.Stop()

	// Block the single worker so later keyed submissions stay queued
	release := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(func() error {
		close(started)
		<-release
		return nil
	})
	<-started

	var runs atomic.Int64
	for i := 0; i < 5; i++ {
		if !pool.SubmitKeyed("analytics:user-1", func() error {
			runs.Add(1)
			return nil
		}) {
			t.Fatal("Keyed submit failed on a running pool")
		}
	}
	close(release)

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("Keyed task never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if runs.Load() != 1 {
		t.Errorf("Expected coalesced submissions to run once, got %d", runs.Load())
	}
	if stats := pool.Stats(); stats.Coalesced != 4 {
		t.Errorf("Expected 4 coalesced submissions, got %d", stats.Coalesced)
	}
}

func TestPoolCountsFailures(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.DefaultPoolConfig("test"))
	pool.Start()
	defer pool.Stop()

	var done sync.WaitGroup
	done.Add(1)
	pool.Submit(func() error {
		defer done.Done()
		return errors.New("boom")
	})
	done.Wait()

	// The failure counter updates after the task returns
	deadline := time.After(2 * time.Second)
	for pool.Stats().Failed == 0 {
		select {
		case <-deadline:
			t.Fatal("Failure never counted")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.DefaultPoolConfig("test"))
	pool.Start()
	defer pool.Stop()

	pool.Submit(func() error {
		panic("worker panic")
	})

	deadline := time.After(2 * time.Second)
	for pool.Stats().Recovered == 0 {
		select {
		case <-deadline:
			t.Fatal("Panic never recovered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Pool keeps serving after the panic
	var done sync.WaitGroup
	done.Add(1)
	if !pool.Submit(func() error {
		defer done.Done()
		return nil
	}) {
		t.Fatal("Submit failed after recovered panic")
	}
	done.Wait()
}
