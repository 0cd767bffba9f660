package guarded

import "maps"

// Map is a guarded map: one map[K]V behind one Value, with each method
// forming a single critical section. For many concurrent reads/writes a
// sync.Map may be more performant, although it does not utilize Go
// generics. A Map must be created with NewMap or MapFromMap.
type Map[K comparable, V any] struct {
	inner *Value[map[K]V]
}

// NewMap returns an empty guarded map, ready for reads and writes.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{inner: New(make(map[K]V))}
}

// MapFromMap creates a guarded map from the given map.
// This shallow-copies the map, changes to the original map will not
// affect the new Map.
func MapFromMap[K comparable, V any](m map[K]V) *Map[K, V] {
	inner := maps.Clone(m)
	if inner == nil {
		inner = make(map[K]V)
	}
	return &Map[K, V]{inner: New(inner)}
}

// CreateIfMissing creates a value at the given key, if the key is not
// set yet. fn runs inside the exclusive critical section.
func (m *Map[K, V]) CreateIfMissing(key K, fn func() V) (changed bool) {
	m.inner.WithLock(func(mp *map[K]V) {
		_, ok := (*mp)[key]
		if !ok {
			(*mp)[key] = fn()
		}
		changed = !ok // if it exists, nothing changed
	})
	return
}

// SetIfMissing is a convenience function to set a missing value if it
// does not already exist. To lazy-init the value, see CreateIfMissing.
func (m *Map[K, V]) SetIfMissing(key K, v V) (changed bool) {
	return m.CreateIfMissing(key, func() V {
		return v
	})
}

func (m *Map[K, V]) Has(key K) (ok bool) {
	m.inner.WithRLock(func(mp map[K]V) {
		_, ok = mp[key]
	})
	return
}

func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	m.inner.WithRLock(func(mp map[K]V) {
		value, ok = mp[key]
	})
	return
}

func (m *Map[K, V]) Set(key K, value V) {
	m.inner.WithLock(func(mp *map[K]V) {
		(*mp)[key] = value
	})
}

func (m *Map[K, V]) Len() (n int) {
	m.inner.WithRLock(func(mp map[K]V) {
		n = len(mp)
	})
	return
}

func (m *Map[K, V]) Delete(key K) {
	m.inner.WithLock(func(mp *map[K]V) {
		delete(*mp, key)
	})
}

// Range calls f sequentially for each key and value present in the map,
// under the shared lock. If f returns false, range stops the iteration.
// f must not call back into mutating methods of the same Map.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.inner.WithRLock(func(mp map[K]V) {
		for k, v := range mp {
			if !f(k, v) {
				break
			}
		}
	})
}

// Keys returns an unsorted list of keys of the map.
func (m *Map[K, V]) Keys() (out []K) {
	m.inner.WithRLock(func(mp map[K]V) {
		out = make([]K, 0, len(mp))
		for k := range mp {
			out = append(out, k)
		}
	})
	return
}

// Values returns an unsorted list of values of the map.
func (m *Map[K, V]) Values() (out []V) {
	m.inner.WithRLock(func(mp map[K]V) {
		out = make([]V, 0, len(mp))
		for _, v := range mp {
			out = append(out, v)
		}
	})
	return
}

// Clear removes all key-value pairs from the map.
func (m *Map[K, V]) Clear() {
	m.inner.WithLock(func(mp *map[K]V) {
		clear(*mp)
	})
}
