package drv8305

// ReadCommand selects a status register. The upper 5 bits of the 16-bit
// frame carry the register address; the rest of the frame is zero.
type ReadCommand uint16

const (
	CmdWarnings          ReadCommand = 0b10001 << 11
	CmdOvercurrentFaults ReadCommand = 0b10010 << 11
	CmdICFaults          ReadCommand = 0b10011 << 11
	CmdGateDriverFaults  ReadCommand = 0b00100 << 11
)

// offlineReply is what a disconnected or unpowered DRV8305 shifts out.
const offlineReply uint16 = 0xFFFF

// WarningFlag is a single bit of the warning/watchdog register.
type WarningFlag uint16

const (
	WarningOvertemp            WarningFlag = 1 << 0
	WarningTempOver135C        WarningFlag = 1 << 1
	WarningTempOver125C        WarningFlag = 1 << 2
	WarningTempOver105C        WarningFlag = 1 << 3
	WarningChargePumpUndervolt WarningFlag = 1 << 4
	WarningVdsOvercurrent      WarningFlag = 1 << 5
	WarningPvddOvervolt        WarningFlag = 1 << 6
	WarningPvddUndervolt       WarningFlag = 1 << 7
	WarningTempOver175C        WarningFlag = 1 << 8
	WarningFault               WarningFlag = 1 << 10
)

// Warnings is the decoded warning/watchdog register bitmap.
type Warnings uint16

// DecodeWarnings validates a raw warning register reply. An all-ones
// reply means the driver is not answering.
func DecodeWarnings(data uint16) (Warnings, error) {
	if data == offlineReply {
		return 0, ErrOffline
	}
	return Warnings(data), nil
}

// Ok reports that no warning bit is set.
func (w Warnings) Ok() bool { return w == 0 }

// Has reports whether flag is set.
func (w Warnings) Has(flag WarningFlag) bool { return uint16(w)&uint16(flag) != 0 }

var warningText = []struct {
	flag WarningFlag
	text string
}{
	{WarningOvertemp, "Overtemp"},
	{WarningTempOver135C, "Temp over 135 C"},
	{WarningTempOver125C, "Temp over 125 C"},
	{WarningTempOver105C, "Temp over 105 C"},
	{WarningChargePumpUndervolt, "Charge pump undervolt"},
	{WarningVdsOvercurrent, "VDS overcurrent"},
	{WarningPvddOvervolt, "PVDD overvolt"},
	{WarningPvddUndervolt, "PVDD undervolt"},
	{WarningTempOver175C, "Temp over 175 C"},
	{WarningFault, "FAULT"},
}

// Describe returns one canonical diagnostic line per set bit, in bit
// order.
func (w Warnings) Describe() []string {
	var lines []string
	for _, wt := range warningText {
		if w.Has(wt.flag) {
			lines = append(lines, wt.text)
		}
	}
	return lines
}

// OvercurrentFaultFlag is a single bit of the VDS/sense overcurrent
// fault register.
type OvercurrentFaultFlag uint16

const (
	OvercurrentSenseA      OvercurrentFaultFlag = 1 << 0
	OvercurrentSenseB      OvercurrentFaultFlag = 1 << 1
	OvercurrentSenseC      OvercurrentFaultFlag = 1 << 2
	OvercurrentMosfetLowC  OvercurrentFaultFlag = 1 << 5
	OvercurrentMosfetHighC OvercurrentFaultFlag = 1 << 6
	OvercurrentMosfetLowB  OvercurrentFaultFlag = 1 << 7
	OvercurrentMosfetHighB OvercurrentFaultFlag = 1 << 8
	OvercurrentMosfetLowA  OvercurrentFaultFlag = 1 << 9
	OvercurrentMosfetHighA OvercurrentFaultFlag = 1 << 10
)

// OvercurrentFaults is the decoded overcurrent fault register bitmap.
type OvercurrentFaults uint16

func DecodeOvercurrentFaults(data uint16) (OvercurrentFaults, error) {
	if data == offlineReply {
		return 0, ErrOffline
	}
	return OvercurrentFaults(data), nil
}

func (f OvercurrentFaults) Ok() bool { return f == 0 }

func (f OvercurrentFaults) Has(flag OvercurrentFaultFlag) bool {
	return uint16(f)&uint16(flag) != 0
}

var overcurrentText = []struct {
	flag OvercurrentFaultFlag
	text string
}{
	{OvercurrentSenseA, "Overcurrent sense A"},
	{OvercurrentSenseB, "Overcurrent sense B"},
	{OvercurrentSenseC, "Overcurrent sense C"},
	{OvercurrentMosfetLowC, "Overcurrent low-side MOSFET C"},
	{OvercurrentMosfetHighC, "Overcurrent high-side MOSFET C"},
	{OvercurrentMosfetLowB, "Overcurrent low-side MOSFET B"},
	{OvercurrentMosfetHighB, "Overcurrent high-side MOSFET B"},
	{OvercurrentMosfetLowA, "Overcurrent low-side MOSFET A"},
	{OvercurrentMosfetHighA, "Overcurrent high-side MOSFET A"},
}

func (f OvercurrentFaults) Describe() []string {
	var lines []string
	for _, ot := range overcurrentText {
		if f.Has(ot.flag) {
			lines = append(lines, ot.text)
		}
	}
	return lines
}

// ICFaultFlag is a single bit of the IC fault register.
type ICFaultFlag uint16

const (
	ICFaultHighSideChargePumpOvervoltAbs ICFaultFlag = 1 << 0
	ICFaultHighSideChargePumpOvervolt    ICFaultFlag = 1 << 1
	ICFaultHighSideChargePumpUndervolt2  ICFaultFlag = 1 << 2
	ICFaultLowSideGateSupply             ICFaultFlag = 1 << 4
	ICFaultAvddUndervolt                 ICFaultFlag = 1 << 5
	ICFaultVregUndervolt                 ICFaultFlag = 1 << 6
	ICFaultOvertemp                      ICFaultFlag = 1 << 8
	ICFaultWatchdog                      ICFaultFlag = 1 << 9
	ICFaultPvddUndervolt2                ICFaultFlag = 1 << 10
)

// ICFaults is the decoded IC fault register bitmap.
type ICFaults uint16

func DecodeICFaults(data uint16) (ICFaults, error) {
	if data == offlineReply {
		return 0, ErrOffline
	}
	return ICFaults(data), nil
}

func (f ICFaults) Ok() bool { return f == 0 }

func (f ICFaults) Has(flag ICFaultFlag) bool { return uint16(f)&uint16(flag) != 0 }

var icFaultText = []struct {
	flag ICFaultFlag
	text string
}{
	{ICFaultHighSideChargePumpOvervoltAbs, "High-side charge pump overvolt (abs)"},
	{ICFaultHighSideChargePumpOvervolt, "High-side charge pump overvolt"},
	{ICFaultHighSideChargePumpUndervolt2, "High-side charge pump undervolt 2"},
	{ICFaultLowSideGateSupply, "Low-side gate supply fault"},
	{ICFaultAvddUndervolt, "AVDD undervolt"},
	{ICFaultVregUndervolt, "VREG undervolt"},
	{ICFaultOvertemp, "IC overtemp"},
	{ICFaultWatchdog, "Watchdog fault"},
	{ICFaultPvddUndervolt2, "PVDD undervolt 2"},
}

func (f ICFaults) Describe() []string {
	var lines []string
	for _, it := range icFaultText {
		if f.Has(it.flag) {
			lines = append(lines, it.text)
		}
	}
	return lines
}

// GateDriverFaultFlag is a single bit of the gate-driver fault register.
type GateDriverFaultFlag uint16

const (
	GateDriverFaultLowMosfetC  GateDriverFaultFlag = 1 << 5
	GateDriverFaultHighMosfetC GateDriverFaultFlag = 1 << 6
	GateDriverFaultLowMosfetB  GateDriverFaultFlag = 1 << 7
	GateDriverFaultHighMosfetB GateDriverFaultFlag = 1 << 8
	GateDriverFaultLowMosfetA  GateDriverFaultFlag = 1 << 9
	GateDriverFaultHighMosfetA GateDriverFaultFlag = 1 << 10
)

// GateDriverFaults is the decoded gate-driver fault register bitmap.
type GateDriverFaults uint16

func DecodeGateDriverFaults(data uint16) (GateDriverFaults, error) {
	if data == offlineReply {
		return 0, ErrOffline
	}
	return GateDriverFaults(data), nil
}

func (f GateDriverFaults) Ok() bool { return f == 0 }

func (f GateDriverFaults) Has(flag GateDriverFaultFlag) bool {
	return uint16(f)&uint16(flag) != 0
}

var gateDriverFaultText = []struct {
	flag GateDriverFaultFlag
	text string
}{
	{GateDriverFaultLowMosfetC, "Gate drive fault low-side MOSFET C"},
	{GateDriverFaultHighMosfetC, "Gate drive fault high-side MOSFET C"},
	{GateDriverFaultLowMosfetB, "Gate drive fault low-side MOSFET B"},
	{GateDriverFaultHighMosfetB, "Gate drive fault high-side MOSFET B"},
	{GateDriverFaultLowMosfetA, "Gate drive fault low-side MOSFET A"},
	{GateDriverFaultHighMosfetA, "Gate drive fault high-side MOSFET A"},
}

func (f GateDriverFaults) Describe() []string {
	var lines []string
	for _, gt := range gateDriverFaultText {
		if f.Has(gt.flag) {
			lines = append(lines, gt.text)
		}
	}
	return lines
}
