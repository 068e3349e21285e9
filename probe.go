// Package pingprobe implements a single-target ICMP echo probe: it frames
// an echo request, transmits it over a raw socket and waits for the
// matching reply within a deadline, reporting round-trip latency or a
// timeout. One probe attempt owns one socket; callers wanting to probe
// several hosts at once run one Pinger per host with distinct
// identifiers so replies are not cross-matched.
package pingprobe

import (
	"context"
	"net/netip"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"

	"github.com/netprobe/go-pingprobe/packet"
	"github.com/netprobe/go-pingprobe/rawsock"
)

const (
	// DefaultTTL is the conventional IP time-to-live for ping.
	DefaultTTL = 64
	// DefaultTimeout bounds one attempt from send to matching reply.
	DefaultTimeout = 2500 * time.Millisecond
)

// replyLen is the exact size of a raw echo reply as read from the
// socket: the kernel hands us the IPv4 header (no-options case) followed
// by the ICMP message.
const replyLen = ipv4.HeaderLen + packet.Size

// Transport is the raw socket surface the prober drives. *rawsock.Socket
// implements it; tests substitute an in-memory fake.
type Transport interface {
	SetTTL(ttl int) error
	SetReadTimeout(d time.Duration) error
	Send(b []byte) error
	Recv(b []byte) (int, error)
	Close() error
}

// Pinger runs ICMP echo probes, one attempt at a time.
type Pinger struct {
	// TTL is the IP time-to-live set on the socket.
	TTL int
	// Timeout bounds each attempt. Expiry is reported as TimedOut.
	Timeout time.Duration
	// Log receives unrelated-traffic notices at V(1). Defaults to a
	// discarding logger.
	Log logr.Logger

	id   uint16
	seq  uint16
	dial func(dst netip.Addr) (Transport, error)
}

// New returns a Pinger with the conventional ping defaults. The echo
// identifier is derived from the pid, so concurrent processes on one
// host do not match each other's replies.
func New() *Pinger {
	return &Pinger{
		TTL:     DefaultTTL,
		Timeout: DefaultTimeout,
		Log:     logr.Discard(),
		id:      uint16(os.Getpid() & 0xffff),
		dial: func(dst netip.Addr) (Transport, error) {
			return rawsock.Open(dst)
		},
	}
}

// Probe resolves target and runs one echo attempt against it.
func (p *Pinger) Probe(ctx context.Context, target string) Result {
	addr, err := Resolve(ctx, target)
	if err != nil {
		return Result{Outcome: TransportFailure, Err: err}
	}
	return p.ProbeAddr(addr)
}

// ProbeAddr runs one echo attempt against an already-resolved address,
// blocking until a matching reply arrives or the timeout passes. The
// socket is released on every exit path. Unrelated ICMP traffic picked
// up in the meantime is logged and skipped without resetting the
// deadline.
func (p *Pinger) ProbeAddr(addr netip.Addr) Result {
	p.seq++

	conn, err := p.dial(addr)
	if err != nil {
		return Result{Addr: addr, Outcome: TransportFailure, Err: err}
	}
	defer conn.Close()

	if err := conn.SetTTL(p.TTL); err != nil {
		return Result{Addr: addr, Outcome: TransportFailure, Err: err}
	}

	req := packet.NewEchoRequest(p.id, p.seq)
	wire := req.Marshal()

	// time.Now carries a monotonic reading, so the elapsed measurement
	// is immune to wall-clock adjustments during the wait.
	start := time.Now()
	deadline := start.Add(p.Timeout)

	if err := conn.Send(wire); err != nil {
		return Result{Addr: addr, Outcome: TransportFailure, Err: err}
	}

	buf := make([]byte, replyLen)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Result{Addr: addr, Outcome: TimedOut}
		}
		if err := conn.SetReadTimeout(remaining); err != nil {
			return Result{Addr: addr, Outcome: TransportFailure, Err: err}
		}

		n, err := conn.Recv(buf)
		if err != nil {
			if errors.Is(err, rawsock.ErrTimeout) {
				return Result{Addr: addr, Outcome: TimedOut}
			}
			return Result{Addr: addr, Outcome: TransportFailure, Err: err}
		}

		if n != replyLen {
			p.Log.V(1).Info("unrelated message received", "bytes", n)
			continue
		}
		hdr, err := ipv4.ParseHeader(buf[:n])
		if err != nil || hdr.Len != ipv4.HeaderLen {
			p.Log.V(1).Info("unrelated message received", "bytes", n, "dump", packet.Dump(buf[:n]))
			continue
		}
		if req.MatchesReply(buf[hdr.Len:n], p.id) {
			return Result{Addr: addr, Outcome: Success, RTT: time.Since(start)}
		}

		var reply packet.EchoPacket
		if err := reply.Unmarshal(buf[hdr.Len:n]); err == nil {
			p.Log.V(1).Info("unrelated message received", "bytes", n, "id", reply.ID)
		}
	}
}
