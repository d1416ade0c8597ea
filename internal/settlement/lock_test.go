package settlement

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderLocksSerializeSameOrder(t *testing.T) {
	locks := newOrderLocks()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock(id)
			counter++
			locks.Unlock(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestOrderLocksReleaseEntries(t *testing.T) {
	locks := newOrderLocks()
	id := uuid.New()

	locks.Lock(id)
	locks.Unlock(id)

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.entries, "entries must not accumulate after release")
}

func TestOrderLocksIndependentOrdersDoNotBlock(t *testing.T) {
	locks := newOrderLocks()
	first := uuid.New()
	second := uuid.New()

	locks.Lock(first)
	done := make(chan struct{})
	go func() {
		locks.Lock(second)
		locks.Unlock(second)
		close(done)
	}()
	<-done
	locks.Unlock(first)
}
