package net

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/config"
	"github.com/l1jgo/arena/internal/net/protocol"
)

func newLoopback(t *testing.T, queue int) *Server {
	t.Helper()
	s, err := NewServer(config.NetworkConfig{
		BindAddress: "127.0.0.1:0",
		InQueueSize: queue,
		ReadTimeout: 20 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func dialServer(t *testing.T, s *Server) *net.UDPConn {
	t.Helper()
	c, err := net.DialUDP("udp", nil, net.UDPAddrFromAddrPort(s.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func drainUntil(s *Server, n int) []Inbound {
	var got []Inbound
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, s.Drain(0)...)
		time.Sleep(5 * time.Millisecond)
	}
	return got
}

func TestReceiveDecodesAndQueues(t *testing.T) {
	s := newLoopback(t, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ReceiveLoop(ctx) }()

	c := dialServer(t, s)
	_, err := c.Write([]byte{0xEE}) // unknown tag, dropped
	require.NoError(t, err)
	_, err = c.Write(protocol.Marshal(&protocol.JoinRequest{Name: "Lina"}))
	require.NoError(t, err)
	_, err = c.Write(protocol.Marshal(&protocol.Input{Seq: 1, LastTick: 4}))
	require.NoError(t, err)

	got := drainUntil(s, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Lina", got[0].Msg.(*protocol.JoinRequest).Name)
	assert.Equal(t, uint32(4), got[1].Msg.(*protocol.Input).LastTick)
	local := c.LocalAddr().(*net.UDPAddr).AddrPort()
	assert.Equal(t, local.Port(), got[0].From.Port())
	assert.Equal(t, uint64(1), s.Malformed())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("receive loop did not stop")
	}
}

func TestDrainRespectsMax(t *testing.T) {
	s := newLoopback(t, 8)
	from := netip.MustParseAddrPort("127.0.0.1:9000")
	for i := 0; i < 5; i++ {
		s.handleDatagram(from, protocol.Marshal(&protocol.Leave{}))
	}
	assert.Len(t, s.Drain(3), 3)
	assert.Len(t, s.Drain(0), 2)
	assert.Empty(t, s.Drain(0))
}

func TestFullQueueDrops(t *testing.T) {
	s := newLoopback(t, 2)
	from := netip.MustParseAddrPort("127.0.0.1:9000")
	for i := 0; i < 4; i++ {
		s.handleDatagram(from, protocol.Marshal(&protocol.Leave{}))
	}
	assert.Equal(t, uint64(2), s.Dropped())
	assert.Len(t, s.Drain(0), 2)
}

func TestSendReachesPeer(t *testing.T) {
	s := newLoopback(t, 4)
	peer, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer peer.Close()

	s.Send(peer.LocalAddr().(*net.UDPAddr).AddrPort(), &protocol.JoinResponse{Accepted: true, PlayerID: 7})

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1500)
	n, _, err := peer.ReadFromUDP(buf)
	require.NoError(t, err)
	msg, err := protocol.Unmarshal(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, uint32(7), msg.(*protocol.JoinResponse).PlayerID)
}
