package uvgrtp

import (
	"net"
	"sync/atomic"
)

/*
 CollisionDetector implements RFC 3550 §8.2's identifier-collision
 discipline: an address mismatch on a known SSRC is a third-party
 collision (drop the packet); a match against our own SSRC is a loop
 or collision on ourselves (emit BYE, regenerate, zero stats).
*/
type CollisionDetector struct {
	table *ParticipantTable
}

func NewCollisionDetector(table *ParticipantTable) *CollisionDetector {
	return &CollisionDetector{table: table}
}

// CheckRemote reports whether ssrc is known under a different address
// than src: if the source endpoint (ip+port) differs from the stored
// address, the packet is dropped and the caller signals the event.
func (d *CollisionDetector) CheckRemote(ssrc uint32, src *net.UDPAddr) bool {
	p, ok := d.table.Get(ssrc)
	if !ok {
		return false
	}

	p.RLock()
	defer p.RUnlock()
	if p.Address == nil {
		return false
	}
	return p.Address.Port != src.Port || !p.Address.IP.Equal(src.IP)
}

// ResolveSelfCollision regenerates self's SSRC and zeroes its
// statistics: per RFC 3550 §8.2, on collision with our own identifier
// we emit BYE for the current SSRC, generate a new one uniformly at
// random, reinitialize our statistics, and continue using the same
// table of remotes. The caller is responsible for emitting the BYE
// before calling this, since only it knows the outbound socket to use.
//
// If the freshly generated SSRC collides with a known remote,
// ErrSsrcCollision is returned so the caller can retry.
func (d *CollisionDetector) ResolveSelfCollision(self *SelfState) error {
	newSSRC := randUint32()
	if d.table.IsKnown(newSSRC) {
		return ErrSsrcCollision
	}

	self.Lock()
	self.SSRC = newSSRC
	self.Stats = ReceptionStats{}
	self.Unlock()

	// Sender counters are mutated via sync/atomic outside self's
	// RWMutex (see SelfState.AddSent), so they are reset the same way
	// rather than by struct assignment.
	atomic.StoreUint64(&self.Sender.SentPkts, 0)
	atomic.StoreUint64(&self.Sender.SentBytes, 0)
	return nil
}
