// Package bldc is the supervisor of a sensored three-phase BLDC
// controller built from a DRV8305 gate driver, an AS5047 absolute
// encoder and a three-phase PWM magnet controller.
//
// The Controller steps a mode machine: calibration first, then a demo
// ramp, with an orthogonal recovery overlay that parks the motor
// whenever the gate driver reports warnings and lifts again once they
// clear. Everything runs on a single cooperative loop (see Run); steps
// never block.
package bldc

import (
	"fmt"
	"io"

	"bldc/as5047"
	"bldc/drv8305"
	"bldc/magnet"
	"bldc/mode"
)

// Config carries the supervisor's settings.
type Config struct {
	// Diag receives human-readable diagnostic lines (calibration
	// findings, warning reports). Defaults to io.Discard;
	// machine.Serial satisfies it on TinyGo targets.
	Diag io.Writer
}

// Controller owns the three peripheral wrappers for the lifetime of the
// program and lends them to the active mode one step at a time.
type Controller struct {
	driver *drv8305.Device
	magnet *magnet.Controller
	sensor *as5047.Device

	// Mode machine: neither set means the program just started and
	// calibration is installed on the first dispatch.
	cal  *mode.Calibration
	demo *mode.Demo

	// Recovery runs in front of the mode machine while warnings are
	// outstanding; the suspended mode keeps its state.
	recovery *mode.Recovery

	diag    io.Writer
	stopped bool
}

// NewController wires a supervisor over already-configured devices.
func NewController(driver *drv8305.Device, mc *magnet.Controller, sensor *as5047.Device, cfg Config) *Controller {
	diag := cfg.Diag
	if diag == nil {
		diag = io.Discard
	}
	return &Controller{
		driver: driver,
		magnet: mc,
		sensor: sensor,
		diag:   diag,
	}
}

// Step runs one supervisor iteration: poll driver warnings, manage the
// recovery overlay, then dispatch the active mode. Any error puts the
// motor in safe mode and is returned.
func (c *Controller) Step() error {
	warnings, err := c.driver.ReadWarnings()
	if err != nil {
		c.safemode()
		return err
	}

	if !warnings.Ok() {
		c.driver.DisableGate()
		if c.recovery == nil {
			c.recovery = mode.NewRecovery()
			for _, line := range warnings.Describe() {
				fmt.Fprintln(c.diag, line)
			}
		}
	} else if c.recovery != nil {
		// Episode over: lift the overlay and hand the gates back to
		// the suspended mode.
		c.recovery = nil
		c.driver.EnableGate()
	}

	if err := c.dispatch(); err != nil {
		c.safemode()
		return err
	}
	return nil
}

// dispatch advances recovery if installed, otherwise the mode machine.
func (c *Controller) dispatch() error {
	if c.recovery != nil {
		return c.recovery.Step(c.driver, c.magnet, c.sensor)
	}

	if c.cal == nil && c.demo == nil {
		c.cal = mode.NewCalibration(c.diag)
	}

	if c.cal != nil {
		if err := c.cal.Step(c.driver, c.magnet, c.sensor); err != nil {
			return err
		}
		if c.cal.Done() {
			demo, err := mode.NewDemo(c.driver, c.magnet)
			if err != nil {
				return err
			}
			c.cal = nil
			c.demo = demo
		}
		return nil
	}

	return c.demo.Step(c.driver, c.magnet, c.sensor)
}

// safemode brakes the motor: power scale to zero and gates off. The
// mode state is left untouched. Braking errors are swallowed so they
// cannot mask the error that got us here.
func (c *Controller) safemode() {
	_ = c.magnet.SetPowerScale(0)
	c.driver.DisableGate()
}

// Stop requests a clean shutdown on the next loop iteration.
func (c *Controller) Stop() {
	c.stopped = true
}

// ShouldContinue reports whether Stop has been requested.
func (c *Controller) ShouldContinue() (bool, error) {
	return !c.stopped, nil
}

// Shutdown returns all hardware. The magnet controller goes first so
// the field is gone before the gate driver releases.
func (c *Controller) Shutdown() error {
	errMagnet := c.magnet.Close()
	errDriver := c.driver.Close()
	errSensor := c.sensor.Close()
	if errMagnet != nil {
		return errMagnet
	}
	if errDriver != nil {
		return errDriver
	}
	return errSensor
}
