package services

import "sync/atomic"

// Fault identifies one of the three documented failure-injection points used
// to exercise the rollback and compensation paths.
type Fault int

const (
	// FaultUpload makes the object-store upload fail (scenario A).
	FaultUpload Fault = iota
	// FaultMidLogic fails after a successful upload, before the database
	// transaction begins (scenario B).
	FaultMidLogic
	// FaultDatabase fails inside the transaction, before commit (scenario C).
	FaultDatabase

	faultCount
)

// FaultInjector carries the armed failure points for a coordinator. Each
// armed fault fires at most once: Fire disarms it atomically, so a configured
// scenario produces exactly one failure even under concurrent imports, and
// test runs stay independent of each other.
//
// The zero value is an injector with nothing armed.
type FaultInjector struct {
	armed [faultCount]atomic.Bool
}

func NewFaultInjector() *FaultInjector {
	return &FaultInjector{}
}

// Arm enables the given fault and disarms the others, mirroring the
// one-scenario-at-a-time semantics of the admin test flags.
func (f *FaultInjector) Arm(fault Fault) {
	for i := range f.armed {
		f.armed[i].Store(Fault(i) == fault)
	}
}

// Reset disarms every fault.
func (f *FaultInjector) Reset() {
	for i := range f.armed {
		f.armed[i].Store(false)
	}
}

// Fire reports whether the fault was armed, consuming it on success. A nil
// injector never fires.
func (f *FaultInjector) Fire(fault Fault) bool {
	if f == nil || fault < 0 || fault >= faultCount {
		return false
	}
	return f.armed[fault].CompareAndSwap(true, false)
}

// Armed reports the currently armed fault, if any.
func (f *FaultInjector) Armed() (Fault, bool) {
	for i := range f.armed {
		if f.armed[i].Load() {
			return Fault(i), true
		}
	}
	return 0, false
}

// ParseFault maps the wire name of an injection point back to its Fault.
func ParseFault(name string) (Fault, bool) {
	switch name {
	case "storage_upload":
		return FaultUpload, true
	case "mid_logic":
		return FaultMidLogic, true
	case "database_before_commit":
		return FaultDatabase, true
	default:
		return 0, false
	}
}

func (f Fault) String() string {
	switch f {
	case FaultUpload:
		return "storage_upload"
	case FaultMidLogic:
		return "mid_logic"
	case FaultDatabase:
		return "database_before_commit"
	default:
		return "unknown"
	}
}
