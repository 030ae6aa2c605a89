package api

import (
	"context"
	"testing"
	"time"
)

func TestWorkerPoolSlowLimit(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 2, MaxSlowWorkers: 2})

	if !pool.TryAcquireSlow() {
		t.Fatal("first slow acquire failed")
	}
	if !pool.TryAcquireSlow() {
		t.Fatal("second slow acquire failed")
	}
	if pool.TryAcquireSlow() {
		t.Fatal("third slow acquire should fail on a pool of 2")
	}

	pool.ReleaseSlow()
	if !pool.TryAcquireSlow() {
		t.Error("slot not reusable after release")
	}
}

func TestWorkerPoolAcquireRespectsContext(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxSlowWorkers: 1})

	if err := pool.AcquireSlow(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.AcquireSlow(ctx); err == nil {
		t.Error("acquire on a full pool should fail once the context expires")
	}

	pool.ReleaseSlow()
	if err := pool.AcquireSlow(context.Background()); err != nil {
		t.Errorf("acquire after release failed: %v", err)
	}
}

func TestWorkerPoolAcquireSlowWithTimeout(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxSlowWorkers: 1})

	if err := pool.AcquireSlowWithTimeout(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := pool.AcquireSlowWithTimeout(20 * time.Millisecond); err == nil {
		t.Error("second acquire should time out")
	}
}

func TestWorkerPoolStats(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 3, MaxSlowWorkers: 2})

	if err := pool.AcquireFast(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !pool.TryAcquireSlow() {
		t.Fatal("slow acquire failed")
	}

	stats := pool.Stats()
	if stats.ActiveFast != 1 || stats.ActiveSlow != 1 {
		t.Errorf("active = %d/%d, want 1/1", stats.ActiveFast, stats.ActiveSlow)
	}
	if stats.MaxFast != 3 || stats.MaxSlow != 2 {
		t.Errorf("limits = %d/%d, want 3/2", stats.MaxFast, stats.MaxSlow)
	}

	pool.ReleaseFast()
	pool.ReleaseSlow()
	stats = pool.Stats()
	if stats.ActiveFast != 0 || stats.ActiveSlow != 0 {
		t.Errorf("active after release = %d/%d, want 0/0", stats.ActiveFast, stats.ActiveSlow)
	}
	if stats.TotalFast != 1 || stats.TotalSlow != 1 {
		t.Errorf("totals = %d/%d, want 1/1", stats.TotalFast, stats.TotalSlow)
	}
}

func TestWorkerPoolDefaults(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{})
	stats := pool.Stats()
	if stats.MaxFast != 100 || stats.MaxSlow != 4 {
		t.Errorf("defaults = %d/%d, want 100/4", stats.MaxFast, stats.MaxSlow)
	}
}
