// Package guarded pairs a single value with a single reader/writer lock,
// so that every access path to the value holds the lock in the right mode.
//
// The core type is Value. Reads and writes either copy in and out under
// the lock (Get, Set, Swap), run a closure inside the critical section
// (WithRLock, WithLock), or hand out a scoped accessor that keeps the
// lock held until released (RLock returning a Shared, Lock returning an
// Exclusive). A Value guards exactly one value: there are no
// transactions, no multi-value atomicity, and no wait/notify.
package guarded

import "sync"

// Value is a container deconflicting reads/writes of a single value,
// without locking up a bigger structure in the caller. The value can
// only be reached through the Value's methods; the lock is never
// exposed for direct acquisition, only through accessors.
//
// A Value must be created with New, NewDefault or NewWithLocker, and
// must not be copied after first use. The zero Value is void: it has
// no locker, and every operation on it panics. MoveTo leaves its
// source void the same way.
//
// For element types with reference semantics (pointers, maps, slices),
// the lock guards the reference held in the Value, not the referent.
// Copies handed out by Get alias the same referent.
type Value[E any] struct {
	noCopy noCopy

	mu  RWLocker
	val E
}

// New returns a Value guarding val, backed by its own sync.RWMutex.
func New[E any](val E) *Value[E] {
	return &Value[E]{mu: new(sync.RWMutex), val: val}
}

// NewDefault returns a Value guarding the zero value of E.
func NewDefault[E any]() *Value[E] {
	var zero E
	return New(zero)
}

// NewWithLocker returns a Value guarding val, backed by the given lock
// primitive. This is the seam for instrumented locks such as
// lockstat.RWMutex. The locker must start out unlocked and must not be
// shared with another Value. A nil locker panics.
func NewWithLocker[E any](val E, mu RWLocker) *Value[E] {
	if mu == nil {
		panic("guarded: nil RWLocker")
	}
	return &Value[E]{mu: mu, val: val}
}

// locker returns the lock backing the Value, panicking on a void Value
// so that misuse surfaces at the call site instead of as a nil deref.
func (c *Value[E]) locker() RWLocker {
	if c.mu == nil {
		panic("guarded: use of void Value (zero or moved-from)")
	}
	return c.mu
}

// Get returns a copy of the guarded value, made entirely under the
// shared lock. The copy is a consistent snapshot: a concurrent Set is
// either fully visible or not at all, never a torn mix.
func (c *Value[E]) Get() (out E) {
	mu := c.locker()
	mu.RLock()
	defer mu.RUnlock()
	out = c.val
	return
}

// Set overwrites the guarded value under the exclusive lock.
func (c *Value[E]) Set(v E) {
	mu := c.locker()
	mu.Lock()
	defer mu.Unlock()
	c.val = v
}

// Swap overwrites the guarded value and returns the previous value, in
// a single critical section.
func (c *Value[E]) Swap(v E) (old E) {
	mu := c.locker()
	mu.Lock()
	defer mu.Unlock()
	old = c.val
	c.val = v
	return
}

// WithRLock runs fn with a copy of the guarded value while holding the
// shared lock. Holding the lock for the duration of fn means writers
// stay out even while fn inspects reference-typed contents of the copy.
// fn must not call back into writing methods of the same Value.
func (c *Value[E]) WithRLock(fn func(v E)) {
	mu := c.locker()
	mu.RLock()
	defer mu.RUnlock()
	fn(c.val)
}

// WithLock runs fn with a pointer to the guarded value while holding
// the exclusive lock; fn may mutate the value in place. fn must not
// call back into methods of the same Value.
func (c *Value[E]) WithLock(fn func(v *E)) {
	mu := c.locker()
	mu.Lock()
	defer mu.Unlock()
	fn(&c.val)
}

// RLock blocks until the shared lock is acquired and returns a live
// read accessor holding it. Any number of shared accessors, on any
// goroutines, may be live at once; each keeps every exclusive accessor
// and every Set waiting. The caller owns exactly one Release:
//
//	acc := v.RLock()
//	defer acc.Release()
func (c *Value[E]) RLock() *Shared[E] {
	mu := c.locker()
	mu.RLock()
	return &Shared[E]{mu: mu, val: &c.val}
}

// Lock blocks until the exclusive lock is acquired and returns a live
// write accessor holding it. While it is live no other accessor, Get or
// Set can proceed. The caller owns exactly one Release:
//
//	acc := v.Lock()
//	defer acc.Release()
func (c *Value[E]) Lock() *Exclusive[E] {
	mu := c.locker()
	mu.Lock()
	return &Exclusive[E]{mu: mu, val: &c.val}
}

// MoveTo transfers the guarded value together with its locker to dst,
// discarding whatever dst held. The source is left void and every
// further use of it panics; a void dst is revived by the transfer.
// Moving a Value to itself is a no-op.
//
// Neither side may have live accessors or in-flight operations while
// moving. That precondition is the caller's to uphold and is not
// checked; a Value cannot track its accessors without taxing every
// acquire and release.
func (c *Value[E]) MoveTo(dst *Value[E]) {
	if c == dst {
		return
	}
	mu := c.locker()
	dst.mu = mu
	dst.val = c.val
	var zero E
	c.mu = nil
	c.val = zero
}
