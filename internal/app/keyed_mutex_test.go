package app

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(7)
			v := counter
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("expected 50, got %d", counter)
	}
	if km.size() != 0 {
		t.Errorf("expected lock table to be empty, got %d", km.size())
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := newKeyedMutex()
	unlockA := km.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock(2)
		unlock()
		close(done)
	}()
	<-done
}
