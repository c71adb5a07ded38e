package uvgrtp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kar8uncle/uvgRTP/rtcp"
)

func TestPromoteSeedsProbationState(t *testing.T) {
	table := NewParticipantTable()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5004}

	p := table.Promote(0x1234, 1000, 0xC0FFEE, 42, addr, 90000)

	assert.True(t, table.IsKnown(0x1234))
	p.RLock()
	defer p.RUnlock()
	assert.EqualValues(t, 1000, p.Stats.BaseSeq)
	assert.EqualValues(t, 1000, p.Stats.MaxSeq)
	assert.Equal(t, MinSequential, p.Stats.Probation)
	assert.EqualValues(t, 90000, p.Stats.ClockRate)
	assert.Equal(t, RoleReceiver, p.Role)
}

func TestGetParticipantsListsAllActive(t *testing.T) {
	table := NewParticipantTable()
	table.Promote(1, 0, 0, 0, nil, 8000)
	table.Promote(2, 0, 0, 0, nil, 8000)

	got := table.GetParticipants()
	assert.ElementsMatch(t, []uint32{1, 2}, got)
	assert.Equal(t, 2, table.Count())
}

func TestRemoveDropsParticipant(t *testing.T) {
	table := NewParticipantTable()
	table.Promote(7, 0, 0, 0, nil, 8000)
	require.True(t, table.IsKnown(7))

	table.Remove(7)
	assert.False(t, table.IsKnown(7))
	assert.Equal(t, 0, table.Count())
}

func TestTakeCachedTransfersOwnershipOnce(t *testing.T) {
	table := NewParticipantTable()
	p := table.Promote(9, 0, 0, 0, nil, 8000)

	p.Lock()
	p.Cached.RR = nil
	p.Unlock()

	_, ok := table.takeCached(9, kindRR)
	assert.False(t, ok, "nothing cached yet")

	rr := rtcp.NewPacketRR()
	p.Lock()
	p.Cached.RR = rr
	p.Unlock()

	frame, ok := table.takeCached(9, kindRR)
	require.True(t, ok)
	assert.Same(t, rr, frame)

	_, ok = table.takeCached(9, kindRR)
	assert.False(t, ok, "slot is emptied by the first take")
}

func TestPromoteAndPopOldestOrdering(t *testing.T) {
	table := NewParticipantTable()
	table.Promote(1, 0, 0, 0, nil, 8000) // pushed first, so it's the oldest
	table.Promote(2, 0, 0, 0, nil, 8000)

	ssrc, ok := table.PopOldest()
	require.True(t, ok)
	assert.EqualValues(t, 1, ssrc)

	ssrc, ok = table.PopOldest()
	require.True(t, ok)
	assert.EqualValues(t, 2, ssrc)

	_, ok = table.PopOldest()
	assert.False(t, ok, "list should be drained")
}

func TestPopOldestOnEmptyTable(t *testing.T) {
	table := NewParticipantTable()
	_, ok := table.PopOldest()
	assert.False(t, ok)
}

func TestAddInitialRejectsIncompleteArgs(t *testing.T) {
	table := NewParticipantTable()
	assert.ErrorIs(t, table.AddInitial("", 5004, 6004, 8000, 0), ErrInvalidValue)
	assert.ErrorIs(t, table.AddInitial("127.0.0.1", 0, 6004, 8000, 0), ErrInvalidValue)
	assert.ErrorIs(t, table.AddInitial("127.0.0.1", 5004, 0, 8000, 0), ErrInvalidValue)
}

func TestAddressOfUnknownSSRC(t *testing.T) {
	table := NewParticipantTable()
	_, ok := table.AddressOf(0xDEAD)
	assert.False(t, ok)
}
