package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockTableMutualExclusion(t *testing.T) {
	var table LockTable[string]
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				table.Lock("k")
				counter++
				table.Unlock("k")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16*250, counter)
}

func TestLockTableIndependentKeys(t *testing.T) {
	var table LockTable[string]

	table.Lock("a")
	done := make(chan struct{})
	go func() {
		table.Lock("b") // must not block on a's lock
		table.Unlock("b")
		close(done)
	}()
	<-done
	table.Unlock("a")
}

func TestLockTableRetiresEntries(t *testing.T) {
	var table LockTable[string]
	table.Lock("a")
	table.Unlock("a")

	entries := 0
	table.locks.Range(func(_, _ any) bool {
		entries++
		return true
	})
	assert.Equal(t, 0, entries)
}
