package bldc

// Program is a cooperatively stepped control program.
type Program interface {
	// Step advances the program by one iteration. A returned error is
	// terminal.
	Step() error
	// ShouldContinue reports whether the loop should keep stepping.
	ShouldContinue() (bool, error)
	// Shutdown releases all hardware held by the program.
	Shutdown() error
}

// Run drives p as fast as the steps complete. There is no fixed-rate
// scheduling; signal timing belongs to the hardware peripherals. Run
// returns the first step error, or the result of Shutdown once
// ShouldContinue reports false.
func Run(p Program) error {
	for {
		cont, err := p.ShouldContinue()
		if err != nil {
			return err
		}
		if !cont {
			return p.Shutdown()
		}
		if err := p.Step(); err != nil {
			return err
		}
	}
}
