// Package rawsock owns the raw ICMP socket a probe attempt exchanges echo
// messages through: creation, TTL and receive-timeout configuration, send
// and receive. Datagrams read from a raw socket include the leading IPv4
// header; callers strip it before interpreting the ICMP payload.
package rawsock

import (
	"net/netip"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Sentinel errors classifying transport failures. Callers use errors.Is
// to tell an unprivileged environment from other socket failures.
var (
	ErrPermission    = errors.New("raw icmp socket not permitted")
	ErrSocketCreate  = errors.New("raw icmp socket could not be created")
	ErrConfiguration = errors.New("socket option could not be set")
	ErrSend          = errors.New("echo request could not be sent")
	ErrTimeout       = errors.New("receive timed out")
)

// Socket is a raw AF_INET/IPPROTO_ICMP socket aimed at one destination.
// It is exclusively owned by a single in-flight probe attempt and is not
// safe for concurrent use.
type Socket struct {
	fd     int
	dst    unix.SockaddrInet4
	addr   netip.Addr
	closed bool
}

// Open creates a raw ICMP socket for dst. Raw sockets typically require
// elevated privilege; EPERM and EACCES surface as ErrPermission, any
// other creation failure as ErrSocketCreate.
func Open(dst netip.Addr) (*Socket, error) {
	if !dst.Is4() {
		return nil, errors.Wrapf(ErrSocketCreate, "%s is not an IPv4 address", dst)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_ICMP)
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, errors.Wrapf(ErrPermission, "socket: %v", err)
		}
		return nil, errors.Wrapf(ErrSocketCreate, "socket: %v", err)
	}
	return &Socket{fd: fd, dst: unix.SockaddrInet4{Addr: dst.As4()}, addr: dst}, nil
}

// RemoteAddr returns the destination the socket was opened for.
func (s *Socket) RemoteAddr() netip.Addr {
	return s.addr
}

// SetTTL sets the IP time-to-live for outgoing datagrams.
func (s *Socket) SetTTL(ttl int) error {
	if err := unix.SetsockoptInt(s.fd, unix.IPPROTO_IP, unix.IP_TTL, ttl); err != nil {
		return errors.Wrapf(ErrConfiguration, "IP_TTL=%d: %v", ttl, err)
	}
	return nil
}

// SetReadTimeout bounds how long a single Recv blocks. A zero timeval
// would disable the timeout entirely, so very small budgets are clamped
// to the timeval resolution.
func (s *Socket) SetReadTimeout(d time.Duration) error {
	if d < time.Microsecond {
		d = time.Microsecond
	}
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return errors.Wrapf(ErrConfiguration, "SO_RCVTIMEO=%s: %v", d, err)
	}
	return nil
}

// Send transmits b to the destination in full.
func (s *Socket) Send(b []byte) error {
	if err := unix.Sendto(s.fd, b, 0, &s.dst); err != nil {
		return errors.Wrapf(ErrSend, "sendto %s: %v", s.addr, err)
	}
	return nil
}

// Recv blocks until a datagram arrives or the configured receive timeout
// elapses, filling b and returning the number of bytes read. Expiry of
// the timeout surfaces as ErrTimeout.
func (s *Socket) Recv(b []byte) (int, error) {
	n, _, err := unix.Recvfrom(s.fd, b, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return 0, errors.Wrapf(ErrTimeout, "recvfrom: %v", err)
		}
		return 0, errors.Wrap(err, "recvfrom")
	}
	return n, nil
}

// Close releases the socket. It is safe to call more than once; the file
// descriptor is closed exactly once.
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}
