// Package drv8305 implements the status and gate-control interface of
// the TI DRV8305 three-phase gate driver.
//
// The device speaks 16-bit MSB-first frames with an idle-low clock
// sampled on the second edge (SPI mode 1) and a software-managed chip
// select. A read is served on the transaction after the one that
// selects the register, so the driver keeps a last-command cache: two
// consecutive reads of the same register cost one frame each, a read of
// a different register costs a priming frame plus a data frame.
//
// Datasheet: https://www.ti.com/lit/ds/symlink/drv8305.pdf
package drv8305

import (
	"errors"
	"fmt"
	"io"

	"tinygo.org/x/drivers"
)

// ErrOffline is returned when the driver shifts out an all-ones reply,
// meaning it is unpowered or disconnected.
var ErrOffline = errors.New("drv8305 offline")

// ErrReleased is returned for any transaction attempted after Close.
var ErrReleased = errors.New("drv8305 hardware released")

// Pin is a push-pull output pin.
type Pin interface {
	High()
	Low()
}

// Device represents a DRV8305 on an SPI bus. It owns its chip-select
// and EN_GATE pins from New until Close.
type Device struct {
	bus    drivers.SPI
	cs     Pin
	enGate Pin

	txBuf [2]byte
	rxBuf [2]byte

	lastCmd  ReadCommand
	primed   bool
	released bool
}

// New creates a device connection. The SPI bus must already be
// configured for 16-bit-equivalent mode 1 transfers.
func New(bus drivers.SPI, cs, enGate Pin) *Device {
	return &Device{
		bus:    bus,
		cs:     cs,
		enGate: enGate,
	}
}

// Start deasserts chip select and forces the gates off until a mode
// asks for them.
func (d *Device) Start() {
	d.cs.High()
	d.enGate.Low()
}

// EnableGate drives EN_GATE high, enabling all six bridge switches.
func (d *Device) EnableGate() {
	if d.released {
		return
	}
	d.enGate.High()
}

// DisableGate drives EN_GATE low, forcing all six bridge switches off
// regardless of the PWM inputs.
func (d *Device) DisableGate() {
	if d.released {
		return
	}
	d.enGate.Low()
}

// Stop disables the gate and leaves chip select deasserted. The bus
// transfer API is synchronous, so no busy flag remains to drain.
func (d *Device) Stop() error {
	if d.released {
		return ErrReleased
	}
	d.enGate.Low()
	d.cs.High()
	d.primed = false
	return nil
}

// Close stops the device and releases its hardware. Any later
// transaction fails with ErrReleased. Constructing a new device on the
// same bus and pins is valid afterwards.
func (d *Device) Close() error {
	if d.released {
		return nil
	}
	if err := d.Stop(); err != nil {
		return err
	}
	d.released = true
	return nil
}

// ReadWarnings reads and decodes the warning/watchdog register.
func (d *Device) ReadWarnings() (Warnings, error) {
	data, err := d.Read(CmdWarnings)
	if err != nil {
		return 0, err
	}
	return DecodeWarnings(data)
}

// ReadOvercurrentFaults reads and decodes the VDS/sense overcurrent
// fault register.
func (d *Device) ReadOvercurrentFaults() (OvercurrentFaults, error) {
	data, err := d.Read(CmdOvercurrentFaults)
	if err != nil {
		return 0, err
	}
	return DecodeOvercurrentFaults(data)
}

// ReadICFaults reads and decodes the IC fault register.
func (d *Device) ReadICFaults() (ICFaults, error) {
	data, err := d.Read(CmdICFaults)
	if err != nil {
		return 0, err
	}
	return DecodeICFaults(data)
}

// ReadGateDriverFaults reads and decodes the gate-driver fault
// register.
func (d *Device) ReadGateDriverFaults() (GateDriverFaults, error) {
	data, err := d.Read(CmdGateDriverFaults)
	if err != nil {
		return 0, err
	}
	return DecodeGateDriverFaults(data)
}

// Read returns the 16-bit contents of the register selected by cmd.
// The response to a selector frame arrives on the following
// transaction, so an uncached command is sent once to prime the
// response pipeline and again to capture it.
func (d *Device) Read(cmd ReadCommand) (uint16, error) {
	if !d.primed || d.lastCmd != cmd {
		if _, err := d.send(uint16(cmd)); err != nil {
			return 0, err
		}
		d.lastCmd = cmd
		d.primed = true
	}
	return d.send(uint16(cmd))
}

// send shifts one 16-bit frame out and returns the frame shifted in.
func (d *Device) send(frame uint16) (uint16, error) {
	if d.released {
		return 0, ErrReleased
	}
	d.txBuf[0] = byte(frame >> 8)
	d.txBuf[1] = byte(frame)
	d.cs.Low()
	err := d.bus.Tx(d.txBuf[:], d.rxBuf[:])
	d.cs.High()
	if err != nil {
		d.primed = false
		return 0, err
	}
	return uint16(d.rxBuf[0])<<8 | uint16(d.rxBuf[1]), nil
}

// DumpFaults reads all four status registers and writes one line per
// set bit to out. Intended for bench diagnostics, not the control loop.
func (d *Device) DumpFaults(out io.Writer) error {
	warnings, err := d.ReadWarnings()
	if err != nil {
		return err
	}
	overcurrent, err := d.ReadOvercurrentFaults()
	if err != nil {
		return err
	}
	ic, err := d.ReadICFaults()
	if err != nil {
		return err
	}
	gate, err := d.ReadGateDriverFaults()
	if err != nil {
		return err
	}

	lines := warnings.Describe()
	lines = append(lines, overcurrent.Describe()...)
	lines = append(lines, ic.Describe()...)
	lines = append(lines, gate.Describe()...)
	if len(lines) == 0 {
		_, err := fmt.Fprintln(out, "no faults")
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
