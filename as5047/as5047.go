// Package as5047 implements the readout interface of an AS5047-class
// 14-bit absolute magnetic rotary encoder.
//
// The sensor shares the gate driver's wire format: 16-bit MSB-first
// frames, idle-low clock sampled on the second edge, software chip
// select, and the read-then-read pattern where a register's contents
// arrive on the transaction after the one that selects it.
//
// Beyond the raw angle, the device knows the motor's magnet pole-pair
// count and a calibrated zero offset, so it can report the mechanical
// angle from zero as well as its projection into one electrical
// revolution.
package as5047

import (
	"errors"

	"bldc/angle"

	"tinygo.org/x/drivers"
)

// ErrOffline is returned when the sensor shifts out an all-ones angle
// reply, meaning it is unpowered or disconnected.
var ErrOffline = errors.New("as5047 offline")

// ErrReleased is returned for any transaction attempted after Close.
var ErrReleased = errors.New("as5047 hardware released")

// Pin is a push-pull output pin.
type Pin interface {
	High()
	Low()
}

// ReadCommand selects a sensor register.
type ReadCommand uint16

const (
	CmdErrors      ReadCommand = 0x4001
	CmdDiagnostics ReadCommand = 0x7FFD
	CmdMagnitude   ReadCommand = 0x7FFE
	CmdAngle       ReadCommand = 0xFFFF
)

// posMask keeps the 14 position bits of an angle reply.
const posMask uint16 = 0x3FFF

// posMax is the number of counts in one revolution, 2^14.
const posMax float32 = float32(posMask) + 1

// radsFromRaw scales a masked 14-bit reading to [0, 2pi).
func radsFromRaw(raw uint16) float32 {
	return float32(raw) / posMax * angle.Pi2
}

// Device represents an AS5047 on its own SPI bus. It owns its
// chip-select pin from New until Close.
type Device struct {
	bus drivers.SPI
	cs  Pin

	polePairs   uint32
	radsPerPair float32
	offset      float32

	txBuf [2]byte
	rxBuf [2]byte

	lastCmd  ReadCommand
	primed   bool
	released bool
}

// New creates a device connection for a rotor with the given magnet
// pole-pair count. The SPI bus must already be configured.
func New(bus drivers.SPI, cs Pin, polePairs uint32) *Device {
	return &Device{
		bus:         bus,
		cs:          cs,
		polePairs:   polePairs,
		radsPerPair: angle.Pi2 / float32(polePairs),
	}
}

// Start deasserts chip select.
func (d *Device) Start() {
	d.cs.High()
}

// Stop leaves chip select deasserted. The bus transfer API is
// synchronous, so no busy flag remains to drain.
func (d *Device) Stop() error {
	if d.released {
		return ErrReleased
	}
	d.cs.High()
	d.primed = false
	return nil
}

// Close stops the device and releases its hardware. Any later
// transaction fails with ErrReleased.
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

// SetOffset installs the calibrated zero: subsequent absolute angles
// are measured from it.
func (d *Device) SetOffset(offset float32) {
	d.offset = offset
}

// Offset returns the calibrated zero.
func (d *Device) Offset() float32 {
	return d.offset
}

// PolePairs returns the configured magnet pole-pair count.
func (d *Device) PolePairs() uint32 {
	return d.polePairs
}

// ReadAbsoluteAngle returns the mechanical angle in [0, 2pi), measured
// from the calibrated zero.
func (d *Device) ReadAbsoluteAngle() (float32, error) {
	raw, err := d.Read(CmdAngle)
	if err != nil {
		return 0, err
	}
	if raw == 0xFFFF {
		return 0, ErrOffline
	}
	return angle.Norm(radsFromRaw(raw&posMask) - d.offset), nil
}

// ReadPhaseAngle projects the absolute angle into one electrical
// revolution: one mechanical revolution spans polePairs electrical
// ones. The result lies in [0, 2pi).
func (d *Device) ReadPhaseAngle() (float32, error) {
	abs, err := d.ReadAbsoluteAngle()
	if err != nil {
		return 0, err
	}
	return angle.Mod(abs, d.radsPerPair) * float32(d.polePairs), nil
}

// ReadErrors returns the raw error flag register.
func (d *Device) ReadErrors() (uint16, error) {
	return d.Read(CmdErrors)
}

// ReadDiagnostics returns the raw AGC/diagnostics register.
func (d *Device) ReadDiagnostics() (uint16, error) {
	return d.Read(CmdDiagnostics)
}

// ReadMagnitude returns the raw CORDIC magnitude register.
func (d *Device) ReadMagnitude() (uint16, error) {
	return d.Read(CmdMagnitude)
}

// Read returns the 16-bit contents of the register selected by cmd,
// priming the response pipeline when the selector differs from the
// previous transaction.
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
