// Package magnet synthesizes the rotating stator field of a three-phase
// BLDC motor from a phase angle and a power scale.
//
// The controller drives three complementary PWM pairs, one half-bridge
// per phase U, V, W, through the PWM interface below. Channel duty
// cycles follow the cosine law duty = cos(phase)/2 + 0.5, offset by
// 120 degrees per channel and scaled by the clamped power scale, so a
// power scale of 0 parks all three channels at zero duty and produces
// no net stator vector.
package magnet

import (
	"errors"
	"time"

	"bldc/angle"

	"github.com/orsinium-labs/tinymath"
)

// ErrReleased is returned for any command attempted after Close.
var ErrReleased = errors.New("magnet controller hardware released")

// PWMConfig carries the carrier settings an implementation must apply
// to all three channel pairs: center-aligned counting, complementary
// outputs, and the given dead-time inserted on every edge.
type PWMConfig struct {
	// Frequency is the PWM carrier frequency in Hz.
	Frequency uint32
	// DeadTime separates a switch turning off from its complement
	// turning on.
	DeadTime time.Duration
}

// PWM abstracts the advanced timer peripheral behind the controller.
// Implementations map channels 0..2 onto main+complement output pairs.
type PWM interface {
	Configure(cfg PWMConfig) error
	// Top returns the counter value corresponding to 100% duty.
	Top() uint32
	// Set programs a channel's compare value. Values above Top or
	// channels outside the configured set are rejected with an error.
	Set(channel uint8, value uint32) error
	// Enable starts or stops the counter.
	Enable(on bool)
}

const (
	// DefaultFrequency is the default PWM carrier frequency.
	DefaultFrequency uint32 = 20000
	// DefaultDeadTime is the default complementary-edge separation.
	DefaultDeadTime = 500 * time.Nanosecond
)

// Config holds the carrier settings and the channel mapping for the
// three phases.
type Config struct {
	Frequency uint32
	DeadTime  time.Duration

	ChannelU uint8
	ChannelV uint8
	ChannelW uint8
}

// Controller owns its timer channels and pins from Configure until
// Close.
type Controller struct {
	pwm PWM

	chU, chV, chW uint8

	phaseAngle float32
	powerScale float32

	released bool
}

// New creates a controller on the given PWM peripheral.
func New(pwm PWM) *Controller {
	return &Controller{pwm: pwm}
}

// Configure applies the carrier settings and parks all three channels
// at zero duty.
func (c *Controller) Configure(cfg Config) error {
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.DeadTime == 0 {
		cfg.DeadTime = DefaultDeadTime
	}

	err := c.pwm.Configure(PWMConfig{
		Frequency: cfg.Frequency,
		DeadTime:  cfg.DeadTime,
	})
	if err != nil {
		return err
	}

	c.chU = cfg.ChannelU
	c.chV = cfg.ChannelV
	c.chW = cfg.ChannelW

	for _, ch := range []uint8{c.chU, c.chV, c.chW} {
		if err := c.pwm.Set(ch, 0); err != nil {
			return err
		}
	}

	c.phaseAngle = 0
	c.powerScale = 0
	return nil
}

// PhaseAngle returns the last accepted phase angle, in [0, 2pi).
func (c *Controller) PhaseAngle() float32 {
	return c.phaseAngle
}

// PowerScale returns the last accepted power scale, in [0, 1].
func (c *Controller) PowerScale() float32 {
	return c.powerScale
}

// SetPhaseAngle recomputes the three duties for phaseAngle at the
// current power scale.
func (c *Controller) SetPhaseAngle(phaseAngle float32) error {
	return c.SetPhaseAngleAndPower(phaseAngle, c.powerScale)
}

// SetPowerScale recomputes the three duties for powerScale at the
// current phase angle.
func (c *Controller) SetPowerScale(powerScale float32) error {
	return c.SetPhaseAngleAndPower(c.phaseAngle, powerScale)
}

// SetPhaseAngleAndPower normalizes phaseAngle into [0, 2pi), clamps
// powerScale into [0, 1], and programs the three channel duties. The
// stored pair is updated only when all three compare writes succeed.
func (c *Controller) SetPhaseAngleAndPower(phaseAngle, powerScale float32) error {
	if c.released {
		return ErrReleased
	}

	pa := angle.Norm(phaseAngle)
	ps := constrain(powerScale, 0, 1)

	u := DutyCycle(pa)
	v := DutyCycle(angle.Norm(pa - angle.TwoThirdsPi))
	w := DutyCycle(angle.Norm(pa - angle.FourThirdsPi))

	top := float32(c.pwm.Top())
	if err := c.pwm.Set(c.chU, uint32(u*ps*top)); err != nil {
		return err
	}
	if err := c.pwm.Set(c.chV, uint32(v*ps*top)); err != nil {
		return err
	}
	if err := c.pwm.Set(c.chW, uint32(w*ps*top)); err != nil {
		return err
	}

	c.phaseAngle = pa
	c.powerScale = ps
	return nil
}

// DutyCycle maps a phase angle onto a channel duty in [0, 1].
func DutyCycle(phaseAngle float32) float32 {
	return tinymath.Cos(phaseAngle)/2 + 0.5
}

// Start enables the timer counter.
func (c *Controller) Start() {
	if c.released {
		return
	}
	c.pwm.Enable(true)
}

// Stop disables the timer counter.
func (c *Controller) Stop() {
	if c.released {
		return
	}
	c.pwm.Enable(false)
}

// Close stops the counter and releases the timer channels and pins.
// Any later command fails with ErrReleased.
func (c *Controller) Close() error {
	if c.released {
		return nil
	}
	c.Stop()
	c.released = true
	return nil
}
