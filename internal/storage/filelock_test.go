package storage

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_SerializesCriticalSections(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), ".lock"))

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		counter int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, lock.Lock())
			defer lock.Unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			counter++

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 20, counter)
}

func TestFileLock_SeparateHandlesOnSameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	first := NewFileLock(path)
	second := NewFileLock(path)

	require.NoError(t, first.Lock())

	acquired := make(chan struct{})
	go func() {
		require.NoError(t, second.Lock())
		close(acquired)
		second.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second handle acquired a held lock")
	default:
	}

	first.Unlock()
	<-acquired
}

func TestFileLock_MissingDirectory(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "absent", ".lock"))
	assert.Error(t, lock.Lock())

	// a failed Lock must not leave the mutex held
	lock.path = filepath.Join(t.TempDir(), ".lock")
	require.NoError(t, lock.Lock())
	lock.Unlock()
}
