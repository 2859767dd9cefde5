package flash

import (
	"sync"
	"testing"
)

func TestEpoch_Supersede(t *testing.T) {
	var e Epoch
	first := e.Next()
	if !e.Valid(first) {
		t.Fatal("fresh epoch should be valid")
	}

	second := e.Next()
	if e.Valid(first) {
		t.Error("superseded epoch should be invalid")
	}
	if !e.Valid(second) || e.Current() != second {
		t.Errorf("Current() = %d, want %d", e.Current(), second)
	}
}

func TestEpoch_Concurrent(t *testing.T) {
	var e Epoch
	var wg sync.WaitGroup
	seen := make([]uint64, 100)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = e.Next()
		}(i)
	}
	wg.Wait()

	unique := make(map[uint64]bool)
	for _, v := range seen {
		unique[v] = true
	}
	if len(unique) != 100 || e.Current() != 100 {
		t.Errorf("got %d unique epochs, Current() = %d; want 100, 100", len(unique), e.Current())
	}
}
