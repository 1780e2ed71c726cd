package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// Inbound is one decoded datagram waiting for the game loop.
type Inbound struct {
	From netip.AddrPort
	Msg  protocol.Message
	At   time.Time
}

// Server owns the process's single UDP socket. ReceiveLoop runs in its own
// goroutine and only writes to the inbound channel; the game loop drains
// that channel once per tick and never blocks on I/O.
type Server struct {
	conn        *net.UDPConn
	in          chan Inbound
	readTimeout time.Duration
	maxDatagram int
	log         *zap.Logger

	closeCh   chan struct{}
	closeOnce sync.Once

	dropped   atomic.Uint64 // inbound queue full
	malformed atomic.Uint64 // decode failures
}

func NewServer(cfg config.NetworkConfig, log *zap.Logger) (*Server, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.BindAddress)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.BindAddress, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.BindAddress, err)
	}
	size := cfg.InQueueSize
	if size <= 0 {
		size = 1024
	}
	maxDatagram := cfg.MaxDatagram
	if maxDatagram <= 0 {
		maxDatagram = 65507
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &Server{
		conn:        conn,
		in:          make(chan Inbound, size),
		readTimeout: timeout,
		maxDatagram: maxDatagram,
		log:         log,
		closeCh:     make(chan struct{}),
	}, nil
}

// ReceiveLoop blocks on the socket with a bounded read deadline until ctx
// is cancelled or the server is shut down. Malformed datagrams are dropped
// and the loop continues.
func (s *Server) ReceiveLoop(ctx context.Context) error {
	buf := make([]byte, s.maxDatagram)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closeCh:
			return nil
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			if s.closed() {
				return nil
			}
			return fmt.Errorf("set read deadline: %w", err)
		}
		n, from, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue // poll interval, not an error
			}
			if s.closed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("UDP 接收失敗", zap.Error(err))
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		s.handleDatagram(from, data)
	}
}

func (s *Server) handleDatagram(from netip.AddrPort, data []byte) {
	msg, err := protocol.Unmarshal(data)
	if err != nil {
		s.malformed.Add(1)
		s.log.Debug("丟棄無效封包",
			zap.Stringer("from", from),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		return
	}
	in := Inbound{From: from, Msg: msg, At: time.Now()}
	select {
	case s.in <- in:
	default:
		s.dropped.Add(1)
		s.log.Warn("接收佇列已滿，丟棄封包",
			zap.Stringer("from", from),
			zap.Stringer("type", msg.Type()),
		)
	}
}

// Drain returns up to max queued messages without blocking. max <= 0
// drains everything currently queued.
func (s *Server) Drain(max int) []Inbound {
	var out []Inbound
	for max <= 0 || len(out) < max {
		select {
		case in := <-s.in:
			out = append(out, in)
		default:
			return out
		}
	}
	return out
}

// Send serializes m and writes it to to. Failures are logged and
// swallowed: reliability lives in the replication layer.
func (s *Server) Send(to netip.AddrPort, m protocol.Message) {
	s.SendRaw(to, protocol.Marshal(m))
}

func (s *Server) SendRaw(to netip.AddrPort, data []byte) {
	if _, err := s.conn.WriteToUDPAddrPort(data, to); err != nil {
		if s.closed() {
			return
		}
		s.log.Warn("UDP 傳送失敗",
			zap.Stringer("to", to),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
	}
}

// Shutdown stops the receive loop and closes the socket.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Server) closed() bool {
	select {
	case <-s.closeCh:
		return true
	default:
		return false
	}
}

// Addr returns the bound socket address.
func (s *Server) Addr() netip.AddrPort {
	return s.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Dropped returns the number of datagrams lost to a full inbound queue.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// Malformed returns the number of datagrams that failed to decode.
func (s *Server) Malformed() uint64 { return s.malformed.Load() }
