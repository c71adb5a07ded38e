package uvgrtp

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kar8uncle/uvgRTP/clock"
	"github.com/kar8uncle/uvgRTP/rtcp"
)

func newTestSession(t *testing.T, ssrc uint32) *Session {
	t.Helper()
	src := clock.NewSynthetic(0, 20)
	s, err := NewSession(context.Background(), ssrc, NewConfig(), src, nil)
	require.NoError(t, err)
	return s
}

func TestOnRTPReceivedPromotesNewSource(t *testing.T) {
	s := newTestSession(t, 0x1000)
	addr := &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 6000}

	outcome := s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 500, Timestamp: 0, PayloadLen: 160}, addr)

	assert.Equal(t, Accepted, outcome)
	assert.Contains(t, s.GetParticipants(), uint32(0x2000))
}

func TestOnRTPReceivedRejectsOwnSSRCAndRotates(t *testing.T) {
	s := newTestSession(t, 0x1000)
	addr := &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 6000}

	outcome := s.OnRTPReceived(RTPFrame{SSRC: 0x1000, SeqNumber: 1, PayloadLen: 160}, addr)

	assert.Equal(t, Rejected, outcome)
	assert.NotEqualValues(t, 0x1000, s.self.GetSSRC(), "self collision must regenerate our ssrc")
}

func TestOnRTPReceivedDropsAddressMismatch(t *testing.T) {
	s := newTestSession(t, 0x1000)
	first := &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 6000}
	s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 500, PayloadLen: 160}, first)

	other := &net.UDPAddr{IP: net.ParseIP("192.0.2.99"), Port: 6000}
	outcome := s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 501, PayloadLen: 160}, other)

	assert.Equal(t, Rejected, outcome)
}

func TestOnRTPReceivedProbationThenSteadyState(t *testing.T) {
	s := newTestSession(t, 0x1000)
	addr := &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 6000}

	require.Equal(t, Accepted, s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 1, PayloadLen: 160}, addr))
	require.Equal(t, Rejected, s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 2, PayloadLen: 160}, addr))
	require.Equal(t, Accepted, s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 3, PayloadLen: 160}, addr))

	p, ok := s.table.Get(0x2000)
	require.True(t, ok)
	p.RLock()
	defer p.RUnlock()
	assert.Zero(t, p.Stats.Probation)
	assert.EqualValues(t, 2, p.Stats.ReceivedPkts) // promotion packet + the packet that passed probation
}

func TestUpdateSenderStatsAccumulates(t *testing.T) {
	s := newTestSession(t, 0x1000)
	s.UpdateSenderStats(RTPFrame{PayloadLen: 200})
	s.UpdateSenderStats(RTPFrame{PayloadLen: 300})

	pkts, bytes := s.self.LoadSent()
	assert.EqualValues(t, 2, pkts)
	assert.EqualValues(t, 500, bytes)
}

func TestEventsChannelReceivesParticipantPromoted(t *testing.T) {
	s := newTestSession(t, 0x1000)
	addr := &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 6000}

	s.OnRTPReceived(RTPFrame{SSRC: 0x2000, SeqNumber: 1, PayloadLen: 160}, addr)

	select {
	case ev := <-s.Events():
		promoted, ok := ev.(EventParticipantPromoted)
		require.True(t, ok, "expected EventParticipantPromoted, got %T", ev)
		assert.EqualValues(t, 0x2000, promoted.SSRC)
	default:
		t.Fatal("expected an event on the bus")
	}
}

func TestSDESRoundTrip(t *testing.T) {
	s := newTestSession(t, 0x1000)
	s.SetSDESItem(rtcp.SDES_TOOL, "unit-test")

	text, ok := s.sdes.Get(rtcp.SDES_TOOL)
	assert.True(t, ok)
	assert.Equal(t, "unit-test", text)
}
