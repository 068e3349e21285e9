package pingprobe

import (
	"net/netip"
	"time"
)

// Outcome classifies a finished probe attempt.
type Outcome int

const (
	// Success means a matching echo reply arrived within the timeout.
	Success Outcome = iota
	// TimedOut means no matching reply arrived before the deadline. It
	// is a normal outcome, distinct from a transport failure.
	TimedOut
	// TransportFailure means the attempt could not be carried out at
	// all: resolution, socket setup or send failed.
	TransportFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case TimedOut:
		return "timeout"
	case TransportFailure:
		return "transport failure"
	default:
		return "unknown"
	}
}

// Result is the immutable outcome of one probe attempt.
type Result struct {
	// Addr is the resolved destination, when resolution got that far.
	Addr netip.Addr
	// Outcome classifies the attempt.
	Outcome Outcome
	// RTT is the measured round trip, valid only on Success.
	RTT time.Duration
	// Err carries the failure cause on TransportFailure.
	Err error
}
