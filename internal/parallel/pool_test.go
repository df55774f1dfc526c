package parallel

import (
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Create(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()
			if pool.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", pool.Workers(), tt.want)
			}
			if !pool.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	const numTasks = 200
	work := make([]func(), numTasks)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if counter.Load() != numTasks {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAll_AllIndices(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var mu sync.Mutex
	seen := make(map[int]bool)
	work := make([]func(), 25)
	for i := range work {
		work[i] = func() {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		}
	}
	pool.ExecuteAll(work)

	for i := range work {
		if !seen[i] {
			t.Errorf("missing index %d", i)
		}
	}
}

func TestWorkerPool_ExecuteAll_UnevenWork(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 16)
	for i := range work {
		work[i] = func() {
			if i%4 == 0 {
				time.Sleep(5 * time.Millisecond)
			}
			counter.Add(1)
		}
	}
	pool.ExecuteAll(work)
	if counter.Load() != 16 {
		t.Errorf("counter = %d, want 16", counter.Load())
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()
	pool.ExecuteAll(nil)
	pool.ExecuteAll([]func(){})
}

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	if pool.IsRunning() {
		t.Error("pool should not be running after Close")
	}
	pool.Close()

	var ran atomic.Bool
	pool.ExecuteAll([]func(){func() { ran.Store(true) }})
	if ran.Load() {
		t.Error("closed pool executed work")
	}
}

// A batch racing with Close either runs completely or not at all, and
// never hangs.
func TestWorkerPool_CloseDuringExecute(t *testing.T) {
	for range 50 {
		pool := NewWorkerPool(2)
		const callers, items = 4, 16
		counts := make([]atomic.Int32, callers)

		var wg sync.WaitGroup
		wg.Add(callers)
		for c := range callers {
			go func() {
				defer wg.Done()
				work := make([]func(), items)
				for i := range work {
					work[i] = func() { counts[c].Add(1) }
				}
				pool.ExecuteAll(work)
			}()
		}
		pool.Close()

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatal("ExecuteAll did not return after Close")
		}
		for c := range counts {
			if n := counts[c].Load(); n != 0 && n != items {
				t.Fatalf("caller %d ran %d of %d items", c, n, items)
			}
		}
	}
}

func TestSplitTiles(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          int
		count         int
		last          image.Rectangle
	}{
		{"exact", 64, 64, 32, 4, image.Rect(32, 32, 64, 64)},
		{"clipped", 70, 40, 32, 6, image.Rect(64, 32, 70, 40)},
		{"single", 10, 10, 32, 1, image.Rect(0, 0, 10, 10)},
		{"default size", 64, 32, 0, 2, image.Rect(32, 0, 64, 32)},
		{"empty", 0, 10, 32, 0, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := SplitTiles(tt.width, tt.height, tt.size)
			if len(tiles) != tt.count {
				t.Fatalf("len = %d, want %d", len(tiles), tt.count)
			}
			if tt.count == 0 {
				return
			}
			if got := tiles[len(tiles)-1]; got != tt.last {
				t.Errorf("last tile = %v, want %v", got, tt.last)
			}
			area := 0
			for _, r := range tiles {
				area += r.Dx() * r.Dy()
			}
			if area != tt.width*tt.height {
				t.Errorf("tiles cover %d pixels, want %d", area, tt.width*tt.height)
			}
		})
	}
}
