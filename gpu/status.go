package gpu

import "fmt"

// Status is the non-fatal part of a driver result. Acquire, present and fence waits
// report one of these alongside a nil error; every other outcome is an error.
type Status int

const (
	Success Status = iota
	Suboptimal
	OutOfDate
	Timeout
	NotReady
)

var statusNames = map[Status]string{
	Success:    "Success",
	Suboptimal: "Suboptimal",
	OutOfDate:  "OutOfDate",
	Timeout:    "Timeout",
	NotReady:   "NotReady",
}

func (s Status) String() string {
	name, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return name
}

// Stale reports whether the swap chain must be rebuilt before the next acquire.
func (s Status) Stale() bool {
	return s == Suboptimal || s == OutOfDate
}
