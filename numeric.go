package guarded

import "golang.org/x/exp/constraints"

// Number covers the element types the numeric helpers work on.
type Number interface {
	constraints.Integer | constraints.Float
}

// Add adds delta to a numeric guarded value under the exclusive lock
// and returns the new value. Methods cannot introduce extra type
// constraints, hence the package-level function.
func Add[N Number](v *Value[N], delta N) (out N) {
	v.WithLock(func(n *N) {
		*n += delta
		out = *n
	})
	return
}

// Inc increments a numeric guarded value by one and returns the new
// value.
func Inc[N Number](v *Value[N]) N {
	return Add(v, 1)
}
