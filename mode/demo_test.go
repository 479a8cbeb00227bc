package mode

import (
	"testing"

	"bldc/angle"

	qt "github.com/frankban/quicktest"
)

func TestNewDemoEnablesGateAndParks(t *testing.T) {
	c := qt.New(t)

	rig := newTestRig(c, rawFor(0))
	demo, err := NewDemo(rig.drv, rig.mc)
	c.Assert(err, qt.IsNil)

	c.Assert(rig.gate.state, qt.Equals, true)
	c.Assert(rig.mc.PowerScale(), qt.Equals, float32(0))
	c.Assert(demo.power, qt.Equals, float32(0))
	c.Assert(demo.angle, qt.Equals, angle.HalfPi)
}

func TestDemoLeadsRotorByQuarterTurn(t *testing.T) {
	c := qt.New(t)

	// Mechanical 0.1 rad on 20 pole pairs is electrical 2.0 rad.
	rig := newTestRig(c, rawFor(0.1))
	demo, err := NewDemo(rig.drv, rig.mc)
	c.Assert(err, qt.IsNil)

	c.Assert(demo.Step(rig.drv, rig.mc, rig.ps), qt.IsNil)

	// The pole-pair projection scales encoder quantization, so the
	// tolerance is wide.
	c.Assert(approx(rig.mc.PhaseAngle(), 2.0+angle.HalfPi, 0.01), qt.Equals, true)
	c.Assert(rig.mc.PowerScale(), qt.Equals, demoAccel)
}

func TestDemoPowerRamps(t *testing.T) {
	c := qt.New(t)

	rig := newTestRig(c, rawFor(0))
	demo, err := NewDemo(rig.drv, rig.mc)
	c.Assert(err, qt.IsNil)

	for i := 0; i < 100; i++ {
		c.Assert(demo.Step(rig.drv, rig.mc, rig.ps), qt.IsNil)
	}
	c.Assert(approx(demo.power, 100*demoAccel, 1e-5), qt.Equals, true)
	c.Assert(demo.accel, qt.Equals, demoAccel)
}

func TestDemoFlipsAccelAtMaxPower(t *testing.T) {
	c := qt.New(t)

	rig := newTestRig(c, rawFor(0))
	demo, err := NewDemo(rig.drv, rig.mc)
	c.Assert(err, qt.IsNil)

	demo.power = demoMaxPower + demoAccel
	c.Assert(demo.Step(rig.drv, rig.mc, rig.ps), qt.IsNil)

	c.Assert(demo.accel, qt.Equals, -demoAccel)
	c.Assert(demo.power < demoMaxPower+demoAccel, qt.Equals, true)
	// Direction is unchanged at the top of the ramp.
	c.Assert(demo.angle, qt.Equals, angle.HalfPi)
}

func TestDemoReversesDirectionAtZeroCrossing(t *testing.T) {
	c := qt.New(t)

	rig := newTestRig(c, rawFor(0))
	demo, err := NewDemo(rig.drv, rig.mc)
	c.Assert(err, qt.IsNil)

	demo.accel = -demoAccel
	demo.power = demoMinPower - demoAccel/2

	c.Assert(demo.Step(rig.drv, rig.mc, rig.ps), qt.IsNil)

	c.Assert(demo.accel, qt.Equals, demoAccel)
	c.Assert(demo.angle, qt.Equals, -angle.HalfPi)
}

func TestDemoFullCycleFlipsTwice(t *testing.T) {
	c := qt.New(t)

	rig := newTestRig(c, rawFor(0))
	demo, err := NewDemo(rig.drv, rig.mc)
	c.Assert(err, qt.IsNil)

	// Enough steps to climb to max power, descend through zero and
	// come back up: the lead angle has flipped sign exactly once.
	ratio := demoMaxPower / demoAccel
	steps := int(ratio)*2 + 30
	for i := 0; i < steps; i++ {
		c.Assert(demo.Step(rig.drv, rig.mc, rig.ps), qt.IsNil)
	}
	c.Assert(demo.angle, qt.Equals, -angle.HalfPi)
	c.Assert(demo.accel, qt.Equals, demoAccel)
}
