package export

import "sync/atomic"

// DegradeFlag records that the file renderer has proven unavailable. Once
// set it stays set for the life of the process.
type DegradeFlag struct {
	set atomic.Bool
}

var processFlag DegradeFlag

// ProcessDegradeFlag returns the flag shared by every orchestrator in the
// process
func ProcessDegradeFlag() *DegradeFlag {
	return &processFlag
}

// Set marks rendering as unavailable and reports whether this call flipped it
func (f *DegradeFlag) Set() bool {
	return f.set.CompareAndSwap(false, true)
}

// IsSet reports whether rendering has been marked unavailable
func (f *DegradeFlag) IsSet() bool {
	return f.set.Load()
}
