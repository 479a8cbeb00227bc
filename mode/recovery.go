package mode

import (
	"bldc/as5047"
	"bldc/drv8305"
	"bldc/magnet"
)

// Recovery is the inert state held while the gate driver reports
// warnings. The supervisor keeps the gate disabled and stops advancing
// the mode machine; Recovery itself does nothing and is discarded as
// soon as the warnings clear.
type Recovery struct{}

// NewRecovery creates a recovery overlay.
func NewRecovery() *Recovery {
	return &Recovery{}
}

// Step is a no-op.
func (m *Recovery) Step(drv *drv8305.Device, mc *magnet.Controller, ps *as5047.Device) error {
	return nil
}
