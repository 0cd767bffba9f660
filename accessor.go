package guarded

// Shared is a scoped accessor holding the shared (read) lock of a
// Value. It is created by Value.RLock and stays valid until released or
// moved. A live Shared accessor keeps writers out but coexists with any
// number of other Shared accessors.
//
// The accessor owns exactly one release of the lock, across any chain
// of Moves. Release is idempotent and a no-op on an invalid accessor,
// so a deferred Release composes with Move.
type Shared[E any] struct {
	mu  RWLocker
	val *E
}

// Deref returns a pointer to the guarded value, without copying.
// The pointee must be treated as read-only: other readers may be
// inspecting it concurrently, and mutating through a Shared accessor is
// a data race. Deref panics when the accessor is invalid.
func (a *Shared[E]) Deref() *E {
	if a.mu == nil {
		panic("guarded: deref of released or moved-from shared accessor")
	}
	return a.val
}

// Get returns a copy of the guarded value. Panics when the accessor is
// invalid.
func (a *Shared[E]) Get() E {
	return *a.Deref()
}

// Valid reports whether the accessor still holds the lock.
func (a *Shared[E]) Valid() bool {
	return a.mu != nil
}

// Move transfers the lock-holding obligation to a fresh accessor and
// invalidates this one. The lock stays held throughout, with no
// release/re-acquire window in between. Moving an invalid accessor
// yields another invalid accessor.
func (a *Shared[E]) Move() *Shared[E] {
	moved := &Shared[E]{mu: a.mu, val: a.val}
	a.mu = nil
	a.val = nil
	return moved
}

// Release releases the shared lock and invalidates the accessor.
// Further calls, and calls on a moved-from accessor, do nothing.
func (a *Shared[E]) Release() {
	if a.mu == nil {
		return
	}
	a.mu.RUnlock()
	a.mu = nil
	a.val = nil
}

// Locker returns the lock primitive this accessor holds, or nil when
// the accessor is invalid.
func (a *Shared[E]) Locker() RWLocker {
	return a.mu
}

// Exclusive is a scoped accessor holding the exclusive (write) lock of
// a Value. It is created by Value.Lock and stays valid until released
// or moved. While it is live, every other accessor and every Get/Set on
// the Value waits.
//
// Like Shared, it owns exactly one release across any chain of Moves,
// and Release is idempotent.
type Exclusive[E any] struct {
	mu  RWLocker
	val *E
}

// Deref returns a pointer to the guarded value for reading and writing.
// Panics when the accessor is invalid.
func (a *Exclusive[E]) Deref() *E {
	if a.mu == nil {
		panic("guarded: deref of released or moved-from exclusive accessor")
	}
	return a.val
}

// Get returns a copy of the guarded value. Panics when the accessor is
// invalid.
func (a *Exclusive[E]) Get() E {
	return *a.Deref()
}

// Set overwrites the guarded value through the accessor. Panics when
// the accessor is invalid.
func (a *Exclusive[E]) Set(v E) {
	*a.Deref() = v
}

// Valid reports whether the accessor still holds the lock.
func (a *Exclusive[E]) Valid() bool {
	return a.mu != nil
}

// Move transfers the lock-holding obligation to a fresh accessor and
// invalidates this one. The lock stays held throughout. Moving an
// invalid accessor yields another invalid accessor.
func (a *Exclusive[E]) Move() *Exclusive[E] {
	moved := &Exclusive[E]{mu: a.mu, val: a.val}
	a.mu = nil
	a.val = nil
	return moved
}

// Release releases the exclusive lock and invalidates the accessor.
// Further calls, and calls on a moved-from accessor, do nothing.
func (a *Exclusive[E]) Release() {
	if a.mu == nil {
		return
	}
	a.mu.Unlock()
	a.mu = nil
	a.val = nil
}

// Locker returns the lock primitive this accessor holds, or nil when
// the accessor is invalid.
func (a *Exclusive[E]) Locker() RWLocker {
	return a.mu
}
