package uvgrtp

import (
	"fmt"
	"net"
	"time"

	"github.com/kar8uncle/uvgRTP/clock"
	"github.com/kar8uncle/uvgRTP/my"
	"github.com/kar8uncle/uvgRTP/rtcp"
	"github.com/kar8uncle/uvgRTP/transport"
)

// Role distinguishes a participant that has sent RTP in the most
// recent interval (Sender) from one that has only been heard from via
// RTCP so far (Receiver).
type Role int

const (
	RoleReceiver Role = iota
	RoleSender
)

// Sequence state machine thresholds, RFC 3550 Appendix A.1.
const (
	MinSequential = 2
	MaxDropout    = 3000
	MaxMisorder   = 100
)

// ReceptionStats tracks per-source reception quality.
type ReceptionStats struct {
	Probation     int
	ReceivedPkts  uint64
	ReceivedBytes uint64
	DroppedPkts   uint32 // surfaced per-SSRC via metrics.Collector.RecordPacketsDropped
	BaseSeq       uint16
	MaxSeq        uint16
	BadSeq        uint32
	Cycles        uint32
	Jitter        float64
	PrevTransit   int32
	InitialRTP    uint32
	InitialNTP    uint64
	ClockRate     uint32
	haveTransit   bool

	// ExpectedPrior and ReceivedPrior snapshot Expected()/ReceivedPkts
	// as of the last report sent about this source, so FractionLost can
	// be computed as an interval delta rather than a cumulative ratio,
	// per RFC 3550 §6.4.1. Updated by SnapshotReportPrior.
	ExpectedPrior uint32
	ReceivedPrior uint64
}

// ExtendedMaxSeq returns cycles | max_seq; Cycles already counts
// wraps in units of 1<<16.
func (s *ReceptionStats) ExtendedMaxSeq() uint32 {
	return s.Cycles | uint32(s.MaxSeq)
}

// Expected returns the number of packets expected, RFC 3550 Appendix A.1.
func (s *ReceptionStats) Expected() uint32 {
	return s.ExtendedMaxSeq() - uint32(s.BaseSeq) + 1
}

// Lost returns the cumulative expected-minus-received count, clamped
// to zero since duplicate packets can make received exceed expected.
// This is the "cumulative number of packets lost" wire field
// (RFC 3550 §6.4.1), distinct from IntervalFractionLost below.
func (s *ReceptionStats) Lost() uint32 {
	expected := s.Expected()
	if uint64(expected) < s.ReceivedPkts {
		return 0
	}
	return expected - uint32(s.ReceivedPkts)
}

// IntervalFractionLost computes the Q8-encoded "fraction lost" wire
// field against the interval since the last report, not the session
// lifetime, per RFC 3550 §6.4.1:
//
//	expected_interval = expected - expected_prior
//	received_interval = received - received_prior
//	lost_interval = expected_interval - received_interval
//	fraction = lost_interval <= 0 ? 0 : (lost_interval << 8) / expected_interval
//
// Callers must follow each report with SnapshotReportPrior so the next
// call measures the next interval rather than re-measuring this one.
func (s *ReceptionStats) IntervalFractionLost() uint8 {
	expectedInterval := int64(s.Expected()) - int64(s.ExpectedPrior)
	receivedInterval := int64(s.ReceivedPkts) - int64(s.ReceivedPrior)
	lostInterval := expectedInterval - receivedInterval

	if expectedInterval <= 0 || lostInterval <= 0 {
		return 0
	}
	fraction := (lostInterval << 8) / expectedInterval
	if fraction > 255 {
		return 255
	}
	return uint8(fraction)
}

// SnapshotReportPrior records Expected()/ReceivedPkts as the baseline
// for the next IntervalFractionLost call, per RFC 3550 §6.4.1's
// expected_prior/received_prior update after each report is sent.
func (s *ReceptionStats) SnapshotReportPrior() {
	s.ExpectedPrior = s.Expected()
	s.ReceivedPrior = s.ReceivedPkts
}

// SenderStats tracks self/remote sender-side counters.
type SenderStats struct {
	SentPkts  uint64
	SentBytes uint64
}

// CachedReports holds the latest received frame of each kind, owned by
// the table and transferred to the caller on query.
type CachedReports struct {
	SR   *rtcp.PacketSR
	RR   *rtcp.PacketRR
	SDES *rtcp.PacketSDES
	APP  *rtcp.PacketAPP
}

// Participant is one known remote SSRC. The socket is owned by the
// participant entry itself: callers must never close it; removal on
// BYE takes the socket with it.
type Participant struct {
	my.RWMutex
	SSRC      uint32
	Address   *net.UDPAddr
	Role      Role
	Stats     ReceptionStats
	Sender    SenderStats
	LSR       uint32
	SRRecvAt  clock.HRCInstant
	HaveLSR   bool
	Cached       CachedReports
	Socket       transport.Socket
	LastRTPRecvd clock.HRCInstant
}

type pendingEntry struct {
	dst       *net.UDPAddr
	clockRate uint32
	socket    transport.Socket
}

// Destination pairs a bound socket with the remote address reports
// are sent to, for the Scheduler's report/BYE emission.
type Destination struct {
	Socket transport.Socket
	Addr   *net.UDPAddr
}

/*
 ParticipantTable maps SSRC to per-source state. Generalizes
 rtcpcontext.go's RtcpContext (which only dispatched REMB/FIR/PLI) into
 a full SSRC->state map. Mutation is single-writer (the Scheduler);
 IsKnown/AddressOf/GetParticipants are safe to call from other
 goroutines under RLock.
*/
type ParticipantTable struct {
	my.RWMutex
	pending map[int]*pendingEntry // keyed by src port, before SSRC is known
	active  map[uint32]*Participant
	order   SentinelList // last-seen order, for stale eviction by the Scheduler
}

func NewParticipantTable() *ParticipantTable {
	t := new(ParticipantTable)
	t.pending = make(map[int]*pendingEntry)
	t.active = make(map[uint32]*Participant)
	t.order.Init()
	return t
}

// AddInitial creates a socket bound to srcPort and parks a pending
// entry awaiting the first RTP packet.
func (t *ParticipantTable) AddInitial(dstAddr string, dstPort, srcPort int, clockRate uint32, readTimeout time.Duration) error {
	if dstAddr == "" || dstPort == 0 || srcPort == 0 {
		return ErrInvalidValue
	}
	dst, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", dstAddr, dstPort))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, err.Error())
	}
	sock, err := transport.Bind(srcPort, readTimeout)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMemory, err.Error())
	}

	t.Lock()
	defer t.Unlock()
	t.pending[srcPort] = &pendingEntry{
		dst:       dst,
		clockRate: clockRate,
		socket:    sock,
	}
	return nil
}

// Promote moves one pending entry to the active map keyed by ssrc, or
// creates a stats-only shadow entry if no pending entry exists.
func (t *ParticipantTable) Promote(ssrc uint32, firstSeq uint16, initialRTP uint32, initialNTP uint64, addr *net.UDPAddr, fallbackClockRate uint32) *Participant {
	t.Lock()
	defer t.Unlock()

	clockRate := fallbackClockRate
	var sock transport.Socket
	var srcPort int
	for port, pending := range t.pending {
		srcPort = port
		clockRate = pending.clockRate
		sock = pending.socket
		break
	}
	if srcPort != 0 {
		delete(t.pending, srcPort)
	}

	p := &Participant{
		SSRC:    ssrc,
		Address: addr,
		Role:    RoleReceiver,
		Socket:  sock,
	}
	p.Stats.Probation = MinSequential
	p.Stats.BaseSeq = firstSeq
	p.Stats.MaxSeq = firstSeq
	p.Stats.BadSeq = 1<<16 + 1 // impossible value: no sequence number matches it, so a first large jump is rejected, not resynced
	p.Stats.InitialRTP = initialRTP
	p.Stats.InitialNTP = initialNTP
	p.Stats.ClockRate = clockRate

	t.active[ssrc] = p
	t.order.Push(ssrc)
	return p
}

func (t *ParticipantTable) IsKnown(ssrc uint32) bool {
	t.RLock()
	defer t.RUnlock()

	_, ok := t.active[ssrc]
	return ok
}

func (t *ParticipantTable) AddressOf(ssrc uint32) (*net.UDPAddr, bool) {
	t.RLock()
	defer t.RUnlock()

	p, ok := t.active[ssrc]
	if !ok {
		return nil, false
	}
	return p.Address, true
}

// Get returns the participant for ssrc without locking it for
// mutation; callers that mutate must hold the participant's own lock.
func (t *ParticipantTable) Get(ssrc uint32) (*Participant, bool) {
	t.RLock()
	defer t.RUnlock()

	p, ok := t.active[ssrc]
	return p, ok
}

// GetParticipants lists the currently known SSRCs.
func (t *ParticipantTable) GetParticipants() []uint32 {
	t.RLock()
	defer t.RUnlock()

	result := make([]uint32, 0, len(t.active))
	for ssrc := range t.active {
		result = append(result, ssrc)
	}
	return result
}

// Remove drops a participant and closes its socket, on BYE or
// Scheduler-detected timeout.
func (t *ParticipantTable) Remove(ssrc uint32) {
	t.Lock()
	defer t.Unlock()

	if p, ok := t.active[ssrc]; ok && p.Socket != nil {
		p.Socket.Close()
	}
	delete(t.active, ssrc)
}

// Sockets returns the listening set, kept in sync with the table so
// the Scheduler can poll them.
func (t *ParticipantTable) Sockets() []transport.Socket {
	t.RLock()
	defer t.RUnlock()

	result := make([]transport.Socket, 0, len(t.active)+len(t.pending))
	for _, p := range t.active {
		if p.Socket != nil {
			result = append(result, p.Socket)
		}
	}
	for _, pending := range t.pending {
		if pending.socket != nil {
			result = append(result, pending.socket)
		}
	}
	return result
}

// Destinations returns every (socket, remote address) pair the
// Scheduler should address a compound report or BYE to.
func (t *ParticipantTable) Destinations() []Destination {
	t.RLock()
	defer t.RUnlock()

	result := make([]Destination, 0, len(t.active)+len(t.pending))
	for _, p := range t.active {
		if p.Socket != nil && p.Address != nil {
			result = append(result, Destination{Socket: p.Socket, Addr: p.Address})
		}
	}
	for _, pending := range t.pending {
		if pending.socket != nil {
			result = append(result, Destination{Socket: pending.socket, Addr: pending.dst})
		}
	}
	return result
}

// Touch re-pushes ssrc to the front of the last-seen order, called on
// every accepted RTP or RTCP packet from that source so the scheduler
// can find timeout candidates at the back without rescanning the whole
// map.
func (t *ParticipantTable) Touch(ssrc uint32) {
	t.order.Push(ssrc)
}

// PopOldest pops one SSRC off the back of the last-seen order, or
// ok=false if the list is empty. Duplicates can accumulate (Touch does
// not dedupe), so a popped SSRC may no longer be active; callers must
// check IsKnown.
func (t *ParticipantTable) PopOldest() (ssrc uint32, ok bool) {
	data, err := t.order.Pop()
	if err != nil {
		return 0, false
	}
	ssrc, ok = data.(uint32)
	return ssrc, ok
}

// Count returns the number of active participants, used by the
// Scheduler's member/bandwidth accounting.
func (t *ParticipantTable) Count() int {
	t.RLock()
	defer t.RUnlock()

	return len(t.active)
}

const (
	kindSR = iota
	kindRR
	kindSDES
	kindAPP
)

// takeCached transfers ownership of the cached frame of the given kind
// to the caller, nulling the slot.
func (t *ParticipantTable) takeCached(ssrc uint32, kind int) (interface{}, bool) {
	t.RLock()
	p, ok := t.active[ssrc]
	t.RUnlock()
	if !ok {
		return nil, false
	}

	p.Lock()
	defer p.Unlock()
	switch kind {
	case kindSR:
		if p.Cached.SR == nil {
			return nil, false
		}
		frame := p.Cached.SR
		p.Cached.SR = nil
		return frame, true
	case kindRR:
		if p.Cached.RR == nil {
			return nil, false
		}
		frame := p.Cached.RR
		p.Cached.RR = nil
		return frame, true
	case kindSDES:
		if p.Cached.SDES == nil {
			return nil, false
		}
		frame := p.Cached.SDES
		p.Cached.SDES = nil
		return frame, true
	case kindAPP:
		if p.Cached.APP == nil {
			return nil, false
		}
		frame := p.Cached.APP
		p.Cached.APP = nil
		return frame, true
	}
	return nil, false
}
