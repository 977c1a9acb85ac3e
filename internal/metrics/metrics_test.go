package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_IncAndAdd(t *testing.T) {
	r := NewRegistry()

	r.Inc(StorePutsTotal)
	r.Add(StorePutsTotal, 2)

	snap := r.Snapshot()
	assert.Equal(t, int64(3), snap[string(StorePutsTotal)])
}

func TestRegistry_MultipleMetrics(t *testing.T) {
	r := NewRegistry()

	r.Inc(StoreGetsTotal)
	r.Inc(StoreMissesTotal)
	r.Add(StoreExpiredTotal, 5)

	snap := r.Snapshot()

	assert.Equal(t, int64(1), snap[string(StoreGetsTotal)])
	assert.Equal(t, int64(1), snap[string(StoreMissesTotal)])
	assert.Equal(t, int64(5), snap[string(StoreExpiredTotal)])
}

func TestRegistry_GaugeStyleDecrement(t *testing.T) {
	r := NewRegistry()

	r.Add(StoreKeysAlive, 3)
	r.Add(StoreKeysAlive, -2)

	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap[string(StoreKeysAlive)])
}

func TestRegistry_ConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	wg := sync.WaitGroup{}

	workers := 50
	increments := 100

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				r.Inc(StoreGetsTotal)
			}
		}()
	}

	wg.Wait()

	snap := r.Snapshot()
	assert.Equal(t, int64(workers*increments), snap[string(StoreGetsTotal)])
}

func TestRegistry_SnapshotIsDeepCopy(t *testing.T) {
	r := NewRegistry()

	r.Inc(StoreKeysAlive)
	snap1 := r.Snapshot()

	snap1[string(StoreKeysAlive)] = 100

	snap2 := r.Snapshot()
	assert.Equal(t, int64(1), snap2[string(StoreKeysAlive)],
		"mutating a snapshot must not affect the registry")
}
