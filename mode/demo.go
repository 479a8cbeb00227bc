package mode

import (
	"bldc/angle"
	"bldc/as5047"
	"bldc/drv8305"
	"bldc/magnet"
)

const (
	// demoMinPower and demoMaxPower bound the torque ramp.
	demoMinPower float32 = 0
	demoMaxPower float32 = 0.2
	// demoAccel is the per-step power ramp rate.
	demoAccel float32 = 0.0001
)

// Demo exercises the motor in both directions. It keeps the commanded
// stator vector a quarter electrical revolution ahead of the measured
// rotor position, which produces torque toward the lead side, and
// slowly ramps the power scale between its bounds, flipping direction
// at every zero crossing.
type Demo struct {
	accel float32
	power float32
	angle float32
}

// NewDemo enables the gate and parks the stator field before the ramp
// begins.
func NewDemo(drv *drv8305.Device, mc *magnet.Controller) (*Demo, error) {
	drv.EnableGate()
	if err := mc.SetPhaseAngleAndPower(0, 0); err != nil {
		return nil, err
	}
	return &Demo{
		accel: demoAccel,
		power: demoMinPower,
		angle: angle.HalfPi,
	}, nil
}

// Step reads the rotor's electrical angle and commands the next field
// vector.
func (m *Demo) Step(drv *drv8305.Device, mc *magnet.Controller, ps *as5047.Device) error {
	phasePos, err := ps.ReadPhaseAngle()
	if err != nil {
		return err
	}

	if m.power > demoMaxPower || m.power < demoMinPower {
		m.accel = -m.accel
	}
	if m.power < demoMinPower {
		m.angle = -m.angle
	}
	m.power += m.accel

	return mc.SetPhaseAngleAndPower(phasePos+m.angle, m.power)
}
