// Package mode holds the controller's operating modes: Calibration,
// Demo, and the Recovery overlay entered while the gate driver reports
// warnings. Each mode advances by one cooperative step at a time; a
// step never blocks.
package mode

import (
	"fmt"
	"io"

	"bldc/angle"
	"bldc/as5047"
	"bldc/drv8305"
	"bldc/magnet"
)

const (
	// Speed is the electrical ramp rate per step during calibration
	// turns.
	Speed float32 = 0.002
	// MaxTurn is the cumulative electrical angle driven toward the
	// mechanical limit.
	MaxTurn float32 = angle.Pi2 * 2
	// holdPower is the power scale used to pin the rotor while it
	// settles.
	holdPower float32 = 0.1
)

type calibrationPhase uint8

const (
	phaseStart calibrationPhase = iota
	phaseSettle
	phaseForwardTurn
	phaseForwardSettle
	phaseBackwardTurn
	phaseBackwardSettle
	phaseDone
)

// Calibration discovers the rotor's mechanical zero and its forward
// and backward travel extents. It holds the rotor against the
// zero-field detent, waits for it to settle, installs the settled mean
// as the encoder's zero offset, then ramps the stator field forward to
// MaxTurn and back to zero, recording the settled position at each end.
type Calibration struct {
	phase calibrationPhase

	zero           float32
	forwardExtent  float32
	backwardExtent float32

	settler              Settler
	cumulativePhaseAngle float32

	diag io.Writer
}

// NewCalibration creates a calibration run reporting its findings on
// diag.
func NewCalibration(diag io.Writer) *Calibration {
	if diag == nil {
		diag = io.Discard
	}
	return &Calibration{diag: diag}
}

// Done reports that both extents have been recorded and the gate has
// been released.
func (m *Calibration) Done() bool {
	return m.phase == phaseDone
}

// Zero returns the learned mechanical zero (valid once past Settle).
func (m *Calibration) Zero() float32 { return m.zero }

// ForwardExtent returns the settled position at MaxTurn.
func (m *Calibration) ForwardExtent() float32 { return m.forwardExtent }

// BackwardExtent returns the settled position back at zero.
func (m *Calibration) BackwardExtent() float32 { return m.backwardExtent }

// Step advances the calibration state machine by one phase tick.
func (m *Calibration) Step(drv *drv8305.Device, mc *magnet.Controller, ps *as5047.Device) error {
	switch m.phase {
	case phaseStart:
		drv.Start()
		drv.EnableGate()
		if err := mc.SetPhaseAngleAndPower(0, holdPower); err != nil {
			return err
		}
		m.phase = phaseSettle

	case phaseSettle:
		abs, err := ps.ReadAbsoluteAngle()
		if err != nil {
			return err
		}
		if zero, ok := m.settler.AddSample(abs); ok {
			m.zero = zero
			ps.SetOffset(zero)
			fmt.Fprintln(m.diag, "SET OFFSET")
			fmt.Fprintf(m.diag, "Found zero at %f radians\n", m.zero)
			m.phase = phaseForwardTurn
		}

	case phaseForwardTurn:
		m.cumulativePhaseAngle += Speed
		if err := mc.SetPhaseAngle(m.cumulativePhaseAngle); err != nil {
			return err
		}
		if m.cumulativePhaseAngle >= MaxTurn {
			m.cumulativePhaseAngle = MaxTurn
			if err := mc.SetPhaseAngle(MaxTurn); err != nil {
				return err
			}
			m.settler.Reset()
			m.phase = phaseForwardSettle
		}

	case phaseForwardSettle:
		abs, err := ps.ReadAbsoluteAngle()
		if err != nil {
			return err
		}
		if extent, ok := m.settler.AddSample(abs); ok {
			m.forwardExtent = extent
			fmt.Fprintf(m.diag, "Found forward extent at %f radians\n", m.forwardExtent)
			m.phase = phaseBackwardTurn
		}

	case phaseBackwardTurn:
		m.cumulativePhaseAngle -= Speed
		if err := mc.SetPhaseAngle(m.cumulativePhaseAngle); err != nil {
			return err
		}
		if m.cumulativePhaseAngle <= 0 {
			m.settler.Reset()
			m.phase = phaseBackwardSettle
		}

	case phaseBackwardSettle:
		abs, err := ps.ReadAbsoluteAngle()
		if err != nil {
			return err
		}
		if extent, ok := m.settler.AddSample(abs); ok {
			m.backwardExtent = extent
			fmt.Fprintf(m.diag, "Found backward extent at %f radians\n", m.backwardExtent)
			if err := mc.SetPhaseAngleAndPower(0, 0); err != nil {
				return err
			}
			drv.DisableGate()
			m.phase = phaseDone
		}

	case phaseDone:
	}

	return nil
}
