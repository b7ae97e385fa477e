package service

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestKeyLocker_SerializesSharedKeys(t *testing.T) {
	log, _ := test.NewNullLogger()
	locker := NewKeyLocker(log)
	defer locker.Stop()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys := []string{"user:doc1", "user:patient1"}
			if i%2 == 0 {
				keys = []string{"user:patient1", "user:doc1", "user:doc1"}
			}
			unlock := locker.Lock(keys...)
			defer unlock()
			counter++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyLocker_CleanupStale(t *testing.T) {
	log, _ := test.NewNullLogger()
	locker := NewKeyLocker(log)
	defer locker.Stop()

	unlock := locker.Lock("a", "b")
	assert.Equal(t, 0, locker.cleanupStale(time.Now().Add(time.Hour)))
	unlock()

	held := locker.Lock("c")
	defer held()

	assert.Equal(t, 0, locker.cleanupStale(time.Now()))
	assert.Equal(t, 2, locker.cleanupStale(time.Now().Add(lockStaleThreshold+time.Second)))
	assert.Len(t, locker.locks, 1)
}

func TestKeyLocker_StopIsIdempotent(t *testing.T) {
	log, _ := test.NewNullLogger()
	locker := NewKeyLocker(log)
	locker.Stop()
	locker.Stop()
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueSorted([]string{"c", "", "a", "b", "a"}))
	assert.Empty(t, uniqueSorted(nil))
}
