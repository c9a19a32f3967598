package importer

import (
	"runtime"
	"sort"
	"testing"
)

func TestWorkerPoolProcessesAllJobs(t *testing.T) {
	pool := NewWorkerPool[int, int](4, 100)
	pool.Start(func(n int) int {
		return n * 2
	})

	for i := 0; i < 100; i++ {
		pool.Submit(i)
	}
	pool.Close()

	var results []int
	for r := range pool.Results() {
		results = append(results, r)
	}

	if len(results) != 100 {
		t.Fatalf("Expected 100 results, got %d", len(results))
	}

	sort.Ints(results)
	for i, r := range results {
		if r != i*2 {
			t.Errorf("Expected result %d at position %d, got %d", i*2, i, r)
		}
	}
}

func TestWorkerPoolDefaultsToNumCPU(t *testing.T) {
	pool := NewWorkerPool[int, int](0, 1000)
	if pool.numWorkers != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), pool.numWorkers)
	}
}

func TestWorkerPoolCappedByJobCount(t *testing.T) {
	pool := NewWorkerPool[int, int](16, 3)
	if pool.numWorkers != 3 {
		t.Errorf("Expected worker count capped to 3, got %d", pool.numWorkers)
	}
}

func TestWorkerPoolZeroJobs(t *testing.T) {
	pool := NewWorkerPool[int, int](2, 0)
	pool.Start(func(n int) int { return n })
	pool.Close()

	count := 0
	for range pool.Results() {
		count++
	}
	if count != 0 {
		t.Errorf("Expected no results, got %d", count)
	}
}
