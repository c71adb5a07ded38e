package transport

import (
	"net"
	"time"
)

/*
 Socket is the external collaborator the Scheduler polls: create, bind,
 set socket options, send/recv with timeout, close. Kept as an
 interface so the control plane never imports net/unix directly; see
 UDPSocket for the default adapter.

 @see https://tools.ietf.org/html/rfc3550#section-6.3.1 (the Scheduler's
 poll-then-deadline loop that drives this interface)
*/
type Socket interface {
	// SendTo writes data to the given remote address.
	SendTo(addr *net.UDPAddr, data []byte) (int, error)
	// RecvFrom reads one datagram into buf, blocking up to the
	// configured read timeout. Returns the source address.
	RecvFrom(buf []byte) (n int, src *net.UDPAddr, err error)
	// SetReadTimeout bounds RecvFrom's blocking duration.
	SetReadTimeout(d time.Duration) error
	// LocalPort reports the bound local UDP port.
	LocalPort() int
	Close() error
}
