package diskutil

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_BurstCollapsesToTrailingCall(t *testing.T) {
	var mu sync.Mutex
	var got []int

	d := NewDebouncer(50*time.Millisecond, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	// Three calls inside one quiet period: only the last survives.
	d.Call(1)
	time.Sleep(10 * time.Millisecond)
	d.Call(2)
	time.Sleep(10 * time.Millisecond)
	d.Call(3)

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d invocations, want 1", len(got))
	}
	if got[0] != 3 {
		t.Errorf("invoked with %d, want 3 (most recent argument)", got[0])
	}
}

func TestDebouncer_SeparateQuietPeriods(t *testing.T) {
	var mu sync.Mutex
	var got []string

	d := NewDebouncer(30*time.Millisecond, func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	d.Call("first")
	time.Sleep(100 * time.Millisecond)
	d.Call("second")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("got %d invocations, want 2", len(got))
	}
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("got %v, want [first second]", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32

	d := NewDebouncer(30*time.Millisecond, func(int) {
		count.Add(1)
	})

	d.Call(1)
	if !d.Stop() {
		t.Error("Stop() = false with an invocation pending, want true")
	}
	if d.Stop() {
		t.Error("second Stop() = true, want false")
	}

	time.Sleep(100 * time.Millisecond)
	if n := count.Load(); n != 0 {
		t.Errorf("stopped debouncer invoked %d times, want 0", n)
	}
}

func TestDebouncer_StopWithoutCall(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, func(int) {})
	if d.Stop() {
		t.Error("Stop() = true with nothing pending, want false")
	}
}

func TestDebouncer_InstancesAreIndependent(t *testing.T) {
	var first, second atomic.Int32

	d1 := NewDebouncer(30*time.Millisecond, func(int) { first.Add(1) })
	d2 := NewDebouncer(30*time.Millisecond, func(int) { second.Add(1) })

	d1.Call(1)
	d2.Call(1)
	time.Sleep(100 * time.Millisecond)

	if n := first.Load(); n != 1 {
		t.Errorf("first debouncer invoked %d times, want 1", n)
	}
	if n := second.Load(); n != 1 {
		t.Errorf("second debouncer invoked %d times, want 1", n)
	}
}

func TestDebouncer_ConcurrentCalls(t *testing.T) {
	var count atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(int) {
		count.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			d.Call(v)
		}(i)
	}
	wg.Wait()

	time.Sleep(150 * time.Millisecond)

	// All concurrent calls land in one quiet period.
	if n := count.Load(); n != 1 {
		t.Errorf("concurrent calls produced %d invocations, want 1", n)
	}
}

func TestDebounce(t *testing.T) {
	var mu sync.Mutex
	var got []int

	save := Debounce(30*time.Millisecond, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	for i := 1; i <= 5; i++ {
		save(i)
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("got %v, want [5]", got)
	}
}
