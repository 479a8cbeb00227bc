package magnet

import (
	"golang.org/x/exp/constraints"
)

// constrain limits value to [min, max].
func constrain[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}
