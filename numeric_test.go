package guarded

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	v := New(uint64(10))
	require.Equal(t, uint64(15), Add(v, 5))
	require.Equal(t, uint64(15), v.Get())

	f := New(1.5)
	require.Equal(t, 2.0, Add(f, 0.5))
}

func TestInc(t *testing.T) {
	v := NewDefault[int64]()
	require.Equal(t, int64(1), Inc(v))
	require.Equal(t, int64(2), Inc(v))
	require.Equal(t, int64(2), v.Get())
}

// Increments from many goroutines must not lose updates.
func TestInc_Concurrent(t *testing.T) {
	v := NewDefault[int64]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				Inc(v)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(8000), v.Get())
}
