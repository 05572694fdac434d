package engine

import (
	"sync"
	"testing"
)

func TestLockTableSerializesPerUser(t *testing.T) {
	table := newLockTable()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.lock("u1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if table.size() != 0 {
		t.Fatalf("table kept %d entries", table.size())
	}
}

func TestLockTableUsersIndependent(t *testing.T) {
	table := newLockTable()

	unlockA := table.lock("a")
	done := make(chan struct{})
	go func() {
		unlock := table.lock("b")
		unlock()
		close(done)
	}()
	<-done

	if table.size() != 1 {
		t.Fatalf("size = %d, want 1", table.size())
	}
	unlockA()
}
