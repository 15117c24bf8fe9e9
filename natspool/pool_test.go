package natspool

import (
	"sync"
	"testing"
	"time"
)

func TestPoolRunsSubmittedWork(t *testing.T) {
	p, err := New(4, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			seen++
			mu.Unlock()
		}); err != nil {
			wg.Done()
			t.Fatalf("Submit: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for submitted work")
	}

	if seen != 10 {
		t.Fatalf("seen = %d, want 10", seen)
	}
}
