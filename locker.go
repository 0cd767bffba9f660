package guarded

import "sync"

// RWLocker is the lock primitive backing a Value: a reader/writer lock
// with a blocking shared mode and a blocking exclusive mode.
// *sync.RWMutex implements it, as does *lockstat.RWMutex.
//
// Acquisition blocks until it succeeds; it never fails, times out, or
// gets cancelled. Fairness between readers and writers is whatever the
// implementation provides, and a Value inherits it unchanged. For the
// default sync.RWMutex a blocked writer stops new readers from
// acquiring, so writers cannot be starved by a steady read load.
type RWLocker interface {
	sync.Locker
	RLock()
	RUnlock()
}

var _ RWLocker = (*sync.RWMutex)(nil)

// noCopy may be embedded into structs which must not be copied
// after the first use. See https://golang.org/issues/8005#issuecomment-190753527
// for details.
type noCopy struct{}

// Lock is a no-op used by copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
