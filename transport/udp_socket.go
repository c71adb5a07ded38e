package transport

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kar8uncle/uvgRTP/my"
)

/*
 UDPSocket is the default Socket adapter. It generalizes connudp.go's
 mutex-guarded net.UDPConn wrapper: writes are serialized behind a
 NamedMutex the same way connectionUdp.writeTo does, and the socket is
 created with SO_REUSEADDR set the way a control-plane listener that
 may be rebound across session restarts needs.
*/
type UDPSocket struct {
	conn      *net.UDPConn
	writeLock my.NamedMutex
	localPort int
}

func reuseAddrControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// Bind creates a non-blocking UDP socket on srcPort with SO_REUSEADDR
// set and a receive timeout. srcPort=0 is rejected by the caller
// before Bind is reached.
func Bind(srcPort int, readTimeout time.Duration) (*UDPSocket, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	pc, err := lc.ListenPacket(context.Background(), "udp", fmt.Sprintf(":%d", srcPort))
	if err != nil {
		return nil, err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, fmt.Errorf("transport: unexpected packet conn type %T", pc)
	}

	s := new(UDPSocket)
	s.conn = conn
	s.writeLock.Init("udpsocket")
	s.localPort = conn.LocalAddr().(*net.UDPAddr).Port
	if readTimeout > 0 {
		if err := s.SetReadTimeout(readTimeout); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *UDPSocket) SendTo(addr *net.UDPAddr, data []byte) (int, error) {
	ctx := context.Background()
	s.writeLock.Lock(ctx)
	defer s.writeLock.Unlock(ctx)
	return s.conn.WriteToUDP(data, addr)
}

func (s *UDPSocket) RecvFrom(buf []byte) (int, *net.UDPAddr, error) {
	n, addr, err := s.conn.ReadFromUDP(buf)
	return n, addr, err
}

func (s *UDPSocket) SetReadTimeout(d time.Duration) error {
	return s.conn.SetReadDeadline(time.Now().Add(d))
}

func (s *UDPSocket) LocalPort() int {
	return s.localPort
}

func (s *UDPSocket) Close() error {
	return s.conn.Close()
}
