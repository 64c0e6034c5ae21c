package frame

// Result is the recoverable outcome of one frame. Fatal outcomes are returned as
// errors marked with a gpu error kind.
type Result int

const (
	// Success means the frame was submitted and presented on a healthy chain.
	Success Result = iota
	// Recreate means the swap chain is stale. Either no work was submitted
	// (out-of-date acquire) or the frame was presented on a suboptimal chain. The
	// caller must recreate the chain before the next frame.
	Recreate
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case Recreate:
		return "Recreate"
	default:
		return "Result(?)"
	}
}
