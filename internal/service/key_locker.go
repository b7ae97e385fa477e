package service

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	lockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// KeyLocker serializes read-modify-write cycles on the same entities inside
// one process. Across processes the store's version check still applies.
//
// Keys are always acquired in sorted order so two actions touching the same
// doctor and patient cannot deadlock.
type KeyLocker struct {
	log *logrus.Logger

	mu    sync.Mutex
	locks map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup. refs and lastUsed are
// guarded by KeyLocker.mu.
type mutexWithTimestamp struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

// NewKeyLocker starts the background cleanup goroutine. Call Stop during shutdown.
func NewKeyLocker(log *logrus.Logger) *KeyLocker {
	l := &KeyLocker{
		log:      log,
		locks:    make(map[string]*mutexWithTimestamp),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Stop gracefully shuts down the cleanup loop. Safe to call multiple times.
func (l *KeyLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Debug("KeyLocker stopped")
	}
}

// Lock acquires every key and returns the function releasing them
func (l *KeyLocker) Lock(keys ...string) func() {
	keys = uniqueSorted(keys)

	held := make([]*mutexWithTimestamp, 0, len(keys))
	for _, key := range keys {
		mt := l.acquire(key)
		mt.mu.Lock()
		held = append(held, mt)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(held[i])
		}
	}
}

func (l *KeyLocker) acquire(key string) *mutexWithTimestamp {
	l.mu.Lock()
	defer l.mu.Unlock()

	mt, ok := l.locks[key]
	if !ok {
		mt = &mutexWithTimestamp{}
		l.locks[key] = mt
	}
	mt.refs++
	mt.lastUsed = time.Now()
	return mt
}

func (l *KeyLocker) release(mt *mutexWithTimestamp) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mt.refs--
	mt.lastUsed = time.Now()
}

func (l *KeyLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanupStale(time.Now())
		}
	}
}

func (l *KeyLocker) cleanupStale(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, mt := range l.locks {
		if mt.refs == 0 && now.Sub(mt.lastUsed) >= lockStaleThreshold {
			delete(l.locks, key)
			removed++
		}
	}

	if removed > 0 {
		l.log.Debugf("Cleaned up %d stale entity locks", removed)
	}
	return removed
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lockKey(kind string, id string) string {
	return kind + ":" + id
}
