package uvgrtp

import (
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRemoteAllowsSameAddress(t *testing.T) {
	table := NewParticipantTable()
	addr := &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 5004}
	table.Promote(0x1111, 0, 0, 0, addr, 8000)

	d := NewCollisionDetector(table)
	assert.False(t, d.CheckRemote(0x1111, addr))
}

func TestCheckRemoteFlagsAddressMismatch(t *testing.T) {
	table := NewParticipantTable()
	addr := &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 5004}
	table.Promote(0x1111, 0, 0, 0, addr, 8000)

	d := NewCollisionDetector(table)
	other := &net.UDPAddr{IP: net.ParseIP("10.0.0.9"), Port: 5004}
	assert.True(t, d.CheckRemote(0x1111, other))
}

func TestCheckRemoteUnknownSSRCNeverCollides(t *testing.T) {
	table := NewParticipantTable()
	d := NewCollisionDetector(table)
	assert.False(t, d.CheckRemote(0xDEAD, &net.UDPAddr{}))
}

func TestResolveSelfCollisionRegeneratesAndZeroesStats(t *testing.T) {
	table := NewParticipantTable()
	d := NewCollisionDetector(table)

	self := NewSelfState(0xAAAA)
	self.Stats.ReceivedPkts = 50
	atomic.StoreUint64(&self.Sender.SentPkts, 10)
	atomic.StoreUint64(&self.Sender.SentBytes, 2000)

	err := d.ResolveSelfCollision(self)
	require.NoError(t, err)

	assert.NotEqualValues(t, 0xAAAA, self.GetSSRC())
	self.RLock()
	assert.Zero(t, self.Stats.ReceivedPkts)
	self.RUnlock()
	pkts, bytes := self.LoadSent()
	assert.Zero(t, pkts)
	assert.Zero(t, bytes)
}

