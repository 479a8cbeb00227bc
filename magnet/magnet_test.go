package magnet

import (
	"errors"
	"testing"
	"time"

	"bldc/angle"

	qt "github.com/frankban/quicktest"
)

// Duty assertions allow for the float32 polynomial cosine plus one
// count of compare-register truncation.
const dutyEps = 5e-3

const testTop = 10000

// mockPWM records compare writes and can fail a chosen channel.
type mockPWM struct {
	cfg        PWMConfig
	configured bool
	enabled    bool
	values     map[uint8]uint32
	failOn     int8 // channel to reject, -1 for none
}

func newMockPWM() *mockPWM {
	return &mockPWM{values: map[uint8]uint32{}, failOn: -1}
}

func (m *mockPWM) Configure(cfg PWMConfig) error {
	m.cfg = cfg
	m.configured = true
	return nil
}

func (m *mockPWM) Top() uint32 { return testTop }

func (m *mockPWM) Set(channel uint8, value uint32) error {
	if m.failOn >= 0 && uint8(m.failOn) == channel {
		return errors.New("channel rejected")
	}
	if value > m.Top() {
		return errors.New("compare value out of range")
	}
	m.values[channel] = value
	return nil
}

func (m *mockPWM) Enable(on bool) { m.enabled = on }

func (m *mockPWM) duty(channel uint8) float32 {
	return float32(m.values[channel]) / float32(testTop)
}

func newTestController(pwm *mockPWM) *Controller {
	c := New(pwm)
	if err := c.Configure(Config{ChannelU: 0, ChannelV: 1, ChannelW: 2}); err != nil {
		panic(err)
	}
	return c
}

func approx(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= dutyEps
}

func TestConfigureDefaultsAndZeroDuty(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := New(pwm)
	c.Assert(ctrl.Configure(Config{ChannelU: 0, ChannelV: 1, ChannelW: 2}), qt.IsNil)

	c.Assert(pwm.cfg.Frequency, qt.Equals, uint32(20000))
	c.Assert(pwm.cfg.DeadTime, qt.Equals, 500*time.Nanosecond)
	for ch := uint8(0); ch < 3; ch++ {
		c.Assert(pwm.values[ch], qt.Equals, uint32(0))
	}
	c.Assert(ctrl.PhaseAngle(), qt.Equals, float32(0))
	c.Assert(ctrl.PowerScale(), qt.Equals, float32(0))
}

func TestZeroCommandDuties(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	c.Assert(ctrl.SetPhaseAngleAndPower(0, 1), qt.IsNil)

	// cos(0) = 1, cos(-2pi/3) = cos(-4pi/3) = -0.5.
	c.Assert(approx(pwm.duty(0), 1.0), qt.Equals, true)
	c.Assert(approx(pwm.duty(1), 0.25), qt.Equals, true)
	c.Assert(approx(pwm.duty(2), 0.25), qt.Equals, true)
}

func TestHalfPowerDuties(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	c.Assert(ctrl.SetPhaseAngleAndPower(angle.HalfPi, 0.5), qt.IsNil)

	// cos(pi/2) = 0, cos(-pi/6) = 0.866, cos(-5pi/6) = -0.866.
	c.Assert(approx(pwm.duty(0), 0.25), qt.Equals, true)
	c.Assert(approx(pwm.duty(1), 0.46651), qt.Equals, true)
	c.Assert(approx(pwm.duty(2), 0.03349), qt.Equals, true)
}

func TestDutyLawOverSweep(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	for _, pa := range []float32{0, 0.5, 1.0, angle.Pi, 4.0, 6.0} {
		for _, ps := range []float32{0, 0.3, 1} {
			c.Assert(ctrl.SetPhaseAngleAndPower(pa, ps), qt.IsNil)

			want := [3]float32{
				DutyCycle(angle.Norm(pa)) * ps,
				DutyCycle(angle.Norm(pa-angle.TwoThirdsPi)) * ps,
				DutyCycle(angle.Norm(pa-angle.FourThirdsPi)) * ps,
			}
			for ch := uint8(0); ch < 3; ch++ {
				got := pwm.duty(ch)
				c.Assert(approx(got, want[ch]), qt.Equals, true)
				c.Assert(got >= 0, qt.Equals, true)
				c.Assert(got <= ps+dutyEps, qt.Equals, true)
			}
		}
	}
}

func TestPowerScaleClamping(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	c.Assert(ctrl.SetPhaseAngleAndPower(0, 2.0), qt.IsNil)
	overdriven := pwm.values[0]
	c.Assert(ctrl.PowerScale(), qt.Equals, float32(1))

	c.Assert(ctrl.SetPhaseAngleAndPower(0, 1.0), qt.IsNil)
	c.Assert(pwm.values[0], qt.Equals, overdriven)

	c.Assert(ctrl.SetPhaseAngleAndPower(0, -0.5), qt.IsNil)
	c.Assert(ctrl.PowerScale(), qt.Equals, float32(0))
	for ch := uint8(0); ch < 3; ch++ {
		c.Assert(pwm.values[ch], qt.Equals, uint32(0))
	}
}

func TestPhaseAngleNormalizedBeforeStore(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	c.Assert(ctrl.SetPhaseAngle(angle.Pi2+1), qt.IsNil)
	got := ctrl.PhaseAngle()
	c.Assert(got >= 0 && got < angle.Pi2, qt.Equals, true)
	c.Assert(approx(got, 1), qt.Equals, true)

	c.Assert(ctrl.SetPhaseAngle(-angle.HalfPi), qt.IsNil)
	c.Assert(approx(ctrl.PhaseAngle(), angle.Pi2-angle.HalfPi), qt.Equals, true)
}

func TestPartialWriteKeepsState(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	c.Assert(ctrl.SetPhaseAngleAndPower(1.0, 0.5), qt.IsNil)

	pwm.failOn = 1
	err := ctrl.SetPhaseAngleAndPower(2.0, 0.8)
	c.Assert(err, qt.Not(qt.IsNil))

	c.Assert(approx(ctrl.PhaseAngle(), 1.0), qt.Equals, true)
	c.Assert(ctrl.PowerScale(), qt.Equals, float32(0.5))
}

func TestSetPhaseAngleKeepsPower(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	c.Assert(ctrl.SetPowerScale(0.7), qt.IsNil)
	c.Assert(ctrl.SetPhaseAngle(1.5), qt.IsNil)
	c.Assert(ctrl.PowerScale(), qt.Equals, float32(0.7))
	c.Assert(approx(ctrl.PhaseAngle(), 1.5), qt.Equals, true)
}

func TestStartStopClose(t *testing.T) {
	c := qt.New(t)

	pwm := newMockPWM()
	ctrl := newTestController(pwm)

	ctrl.Start()
	c.Assert(pwm.enabled, qt.Equals, true)
	ctrl.Stop()
	c.Assert(pwm.enabled, qt.Equals, false)

	c.Assert(ctrl.Close(), qt.IsNil)
	c.Assert(ctrl.Close(), qt.IsNil)
	c.Assert(ctrl.SetPowerScale(0.1), qt.Equals, ErrReleased)

	// The peripheral is free for a fresh construction.
	again := New(pwm)
	c.Assert(again.Configure(Config{ChannelU: 0, ChannelV: 1, ChannelW: 2}), qt.IsNil)
	c.Assert(again.SetPhaseAngleAndPower(0, 1), qt.IsNil)
}
