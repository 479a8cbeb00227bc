// Package angle provides float32 angle math for motor commutation.
// All angles are radians. Electrical phase angles are kept in the
// canonical interval [0, Pi2); cumulative angles used by calibration
// ramps are unbounded.
package angle

import (
	"github.com/orsinium-labs/tinymath"
)

const (
	Pi        float32 = 3.14159
	Pi2       float32 = Pi * 2
	HalfPi    float32 = Pi / 2
	QuarterPi float32 = Pi / 4

	// Three-phase channel offsets.
	TwoThirdsPi  float32 = Pi2 / 3
	FourThirdsPi float32 = TwoThirdsPi * 2
)

// Norm maps rads into [0, Pi2). Negative inputs wrap to the top of the
// interval: Norm(-eps) is just below Pi2, Norm(0) and Norm(Pi2) are 0.
func Norm(rads float32) float32 {
	return Mod(Pi2+Mod(rads, Pi2), Pi2)
}

// Mod is the float32 remainder with the sign of x, the libm fmodf
// contract.
func Mod(x, y float32) float32 {
	return x - tinymath.Trunc(x/y)*y
}
