package repository

import (
	"sync"
	"testing"
)

func TestKeyedMutex(t *testing.T) {
	var k keyedMutex
	counters := map[string]int{}
	var countersMu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		key := "a"
		if i%2 == 0 {
			key = "b"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock(key)
			defer unlock()

			countersMu.Lock()
			counters[key]++
			countersMu.Unlock()
		}()
	}
	wg.Wait()

	if counters["a"] != 25 || counters["b"] != 25 {
		t.Errorf("unexpected counts: %v", counters)
	}
	if len(k.locks) != 0 {
		t.Errorf("expected all locks to be released, got %d", len(k.locks))
	}
}
