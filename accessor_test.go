package guarded

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSharedAccessor(t *testing.T) {
	type point struct {
		X int64
		Y int64
	}
	v := New(point{X: 42, Y: 69})

	acc := v.RLock()
	require.True(t, acc.Valid())
	require.Equal(t, int64(42), acc.Deref().X)
	require.Equal(t, int64(69), acc.Deref().Y)
	require.Equal(t, point{X: 42, Y: 69}, acc.Get())
	require.NotNil(t, acc.Locker())

	acc.Release()
	require.False(t, acc.Valid())
	require.Nil(t, acc.Locker())
	require.Panics(t, func() { acc.Deref() })
	require.Panics(t, func() { acc.Get() })

	// the lock is free again
	v.Set(point{X: 68, Y: 69})
	require.Equal(t, int64(68), v.Get().X)
}

func TestExclusiveAccessor(t *testing.T) {
	v := New(10)

	acc := v.Lock()
	require.True(t, acc.Valid())
	acc.Set(99)
	require.Equal(t, 99, *acc.Deref())
	require.Equal(t, 99, acc.Get())
	acc.Release()

	require.False(t, acc.Valid())
	require.Panics(t, func() { acc.Deref() })
	require.Equal(t, 99, v.Get())
}

func TestSharedAccessors_Coexist(t *testing.T) {
	v := New("hello")
	a := v.RLock()
	defer a.Release()
	// acquiring a second shared accessor must not block while the
	// first one is live
	b := v.RLock()
	defer b.Release()

	require.Equal(t, "hello", a.Get())
	require.Equal(t, "hello", b.Get())
	require.Same(t, a.Deref(), b.Deref())
	require.Same(t, a.Locker(), b.Locker())
}

func TestSharedAccessor_BlocksExclusive(t *testing.T) {
	v := New(10)
	r := v.RLock()

	wrote := make(chan struct{})
	go func() {
		w := v.Lock()
		w.Set(20)
		w.Release()
		close(wrote)
	}()

	select {
	case <-wrote:
		t.Fatal("exclusive accessor acquired while a shared accessor was live")
	case <-time.After(50 * time.Millisecond):
	}
	// the shared view is still the old value
	require.Equal(t, 10, r.Get())

	r.Release()
	<-wrote
	require.Equal(t, 20, v.Get())
}

func TestExclusiveAccessor_BlocksAll(t *testing.T) {
	v := New(10)
	w := v.Lock()
	w.Set(99)

	reads := make(chan int, 2)
	go func() {
		reads <- v.Get()
	}()
	go func() {
		r := v.RLock()
		defer r.Release()
		reads <- r.Get()
	}()

	select {
	case got := <-reads:
		t.Fatalf("read %d while an exclusive accessor was live", got)
	case <-time.After(50 * time.Millisecond):
	}

	w.Release()
	require.Equal(t, 99, <-reads)
	require.Equal(t, 99, <-reads)
}

func TestSharedAccessor_Move(t *testing.T) {
	v := New(7)
	a := v.RLock()
	b := a.Move()

	// the obligation moved: a is invalid, b holds the lock
	require.False(t, a.Valid())
	require.True(t, b.Valid())
	require.Panics(t, func() { a.Deref() })
	require.Equal(t, 7, b.Get())
	require.Nil(t, a.Locker())

	// releasing the moved-from accessor must not release the lock
	a.Release()
	wrote := make(chan struct{})
	go func() {
		w := v.Lock()
		w.Release()
		close(wrote)
	}()
	select {
	case <-wrote:
		t.Fatal("lock was released through the moved-from accessor")
	case <-time.After(50 * time.Millisecond):
	}

	b.Release()
	<-wrote
}

func TestExclusiveAccessor_Move(t *testing.T) {
	v := New(1)
	a := v.Lock()
	a.Set(2)
	b := a.Move()

	require.False(t, a.Valid())
	require.True(t, b.Valid())
	b.Set(3)
	a.Release() // no-op

	read := make(chan int)
	go func() {
		read <- v.Get()
	}()
	select {
	case got := <-read:
		t.Fatalf("read %d while the moved accessor still held the lock", got)
	case <-time.After(50 * time.Millisecond):
	}

	b.Release()
	require.Equal(t, 3, <-read)
}

func TestAccessor_MoveKeepsLocker(t *testing.T) {
	mu := new(sync.RWMutex)
	v := NewWithLocker(0, mu)

	a := v.RLock()
	b := a.Move()
	require.Same(t, mu, b.Locker())
	b.Release()

	w := v.Lock()
	x := w.Move()
	require.Same(t, mu, x.Locker())
	x.Release()
}

func TestAccessor_ReleaseIdempotent(t *testing.T) {
	v := New(1)

	r := v.RLock()
	r.Release()
	r.Release() // no-op, must not double-release
	require.False(t, r.Valid())

	w := v.Lock()
	w.Set(2)
	w.Release()
	w.Release() // no-op
	require.Equal(t, 2, v.Get())

	// moving an invalid accessor yields another invalid accessor
	moved := r.Move()
	require.False(t, moved.Valid())
	moved.Release() // still a no-op
}

// One release per acquisition, across a chain of moves: releasing every
// handle in the chain must unlock exactly once.
func TestAccessor_MoveChain(t *testing.T) {
	v := New(1)
	a := v.RLock()
	b := a.Move()
	c := b.Move()

	a.Release()
	b.Release()
	require.True(t, c.Valid())
	c.Release()
	require.False(t, c.Valid())

	// a full exclusive cycle still works, so the lock is balanced
	w := v.Lock()
	w.Set(5)
	w.Release()
	require.Equal(t, 5, v.Get())
}

// Deferred Release composes with Move: the moved-from handle's deferred
// Release is a no-op and the new handle carries the obligation.
func TestAccessor_DeferCompose(t *testing.T) {
	v := New(11)

	take := func() *Shared[int] {
		acc := v.RLock()
		defer acc.Release() // no-op after the move below
		return acc.Move()
	}
	acc := take()
	require.True(t, acc.Valid())
	require.Equal(t, 11, acc.Get())
	acc.Release()

	v.Set(12)
	require.Equal(t, 12, v.Get())
}
