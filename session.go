package uvgrtp

import (
	"context"
	"fmt"
	"net"

	plogger "github.com/heytribe/go-plogger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kar8uncle/uvgRTP/clock"
	"github.com/kar8uncle/uvgRTP/metrics"
	"github.com/kar8uncle/uvgRTP/rtcp"
)

/*
 Session is the public surface of the RTCP control plane, generalized
 from RtcpContext's push-to-handler shape (rtcpcontext.go) into four
 operation groups: lifecycle (add participant/start/stop), query (get
 participants/get cached packet), hooks (install per-report-type
 callbacks), and self-stat bookkeeping for the local sender. It owns
 the ParticipantTable, SelfState and Scheduler, and is the only piece
 of this package a caller needs to construct directly.
*/
type Session struct {
	self      *SelfState
	table     *ParticipantTable
	sdes      *SDESRegistry
	config    *Config
	estimator clock.Source
	collision *CollisionDetector
	scheduler *Scheduler
	metrics   *metrics.Collector
	bus       chan interface{}

	rtp RTPContext
}

/*
 NewSession creates a session identified by ssrc, generalizing
 NewRtcpContext(ctx)'s single-SSRC-context constructor into one that
 additionally owns participant tracking (RtcpContext only dispatched
 into a single RtpStream). reg may be nil, in which case no metrics
 are registered (the collector methods become safe but inert no-ops
 relative to Prometheus; RecentJitter still works since it is purely
 in-memory).
*/
func NewSession(ctx context.Context, ssrc uint32, cfg *Config, src clock.Source, reg prometheus.Registerer) (*Session, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if src == nil {
		src = clock.NewSystem()
	}

	coll, err := metrics.NewCollector(reg, "uvgrtp", cfg.Rtcp.SDESHistorySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMemory, err.Error())
	}

	s := new(Session)
	s.self = NewSelfState(ssrc)
	s.table = NewParticipantTable()
	s.sdes = NewSDESRegistry()
	s.sdes.Set(rtcp.SDES_CNAME, randString(16))
	s.config = cfg
	s.estimator = src
	s.metrics = coll
	s.collision = NewCollisionDetector(s.table)
	s.bus = make(chan interface{}, 128)
	s.scheduler = NewScheduler(s.table, s.self, s.estimator, s.config, s.sdes, s.metrics, s.bus)

	log := plogger.FromContextSafe(ctx).Prefix("Session")
	log.Infof("session created, ssrc=%#x", ssrc)
	return s, nil
}

// AttachToRTP binds the session to the external RTP data path
// collaborator. Only needed when the caller wants self-collision to
// regenerate the RTP stack's SSRC too, rather than just this
// session's.
func (s *Session) AttachToRTP(rtp RTPContext) {
	s.rtp = rtp
}

// Events returns the channel EventStarted/EventStopped/
// EventRemoteCollision/EventSelfCollision/EventParticipantTimedOut/
// EventProbationPassed are emitted on, generalized from
// pipeline.node.go's Bus pattern. Sends are non-blocking: a caller
// that does not drain this channel misses events rather than stalling
// the scheduler.
func (s *Session) Events() <-chan interface{} {
	return s.bus
}

// AddParticipant parks a pending entry for a remote endpoint, awaiting
// the first RTP packet before it becomes an active participant.
func (s *Session) AddParticipant(dstAddr string, dstPort, srcPort int, clockRate uint32) error {
	return s.table.AddInitial(dstAddr, dstPort, srcPort, clockRate, s.config.Rtcp.ReadTimeout)
}

// GetParticipants lists the SSRCs of all active participants.
func (s *Session) GetParticipants() []uint32 {
	return s.table.GetParticipants()
}

// GetSenderReport, GetReceiverReport, GetSDES and GetAPP transfer
// ownership of the latest cached frame of their kind for ssrc to the
// caller. The second return value is false if nothing of that kind
// has arrived since the last call.
func (s *Session) GetSenderReport(ssrc uint32) (*rtcp.PacketSR, bool) {
	v, ok := s.table.takeCached(ssrc, kindSR)
	if !ok {
		return nil, false
	}
	return v.(*rtcp.PacketSR), true
}

func (s *Session) GetReceiverReport(ssrc uint32) (*rtcp.PacketRR, bool) {
	v, ok := s.table.takeCached(ssrc, kindRR)
	if !ok {
		return nil, false
	}
	return v.(*rtcp.PacketRR), true
}

func (s *Session) GetSDES(ssrc uint32) (*rtcp.PacketSDES, bool) {
	v, ok := s.table.takeCached(ssrc, kindSDES)
	if !ok {
		return nil, false
	}
	return v.(*rtcp.PacketSDES), true
}

func (s *Session) GetAPP(ssrc uint32) (*rtcp.PacketAPP, bool) {
	v, ok := s.table.takeCached(ssrc, kindAPP)
	if !ok {
		return nil, false
	}
	return v.(*rtcp.PacketAPP), true
}

// SetSDESItem sets one of our own SDES items (CNAME/NAME/EMAIL/PHONE/
// LOC/TOOL/NOTE) in the registry the Scheduler reads from when it
// composes the next SDES packet.
func (s *Session) SetSDESItem(kind int, text string) {
	s.sdes.Set(kind, text)
}

// InstallSenderHook, InstallReceiverHook, InstallSDESHook and
// InstallAPPHook register a callback invoked every time a compound
// report of that kind is dispatched. May be (re)installed at any
// time, including after Start().
func (s *Session) InstallSenderHook(fn func(*rtcp.PacketSR))   { s.scheduler.InstallSenderHook(fn) }
func (s *Session) InstallReceiverHook(fn func(*rtcp.PacketRR)) { s.scheduler.InstallReceiverHook(fn) }
func (s *Session) InstallSDESHook(fn func(*rtcp.PacketSDES))   { s.scheduler.InstallSDESHook(fn) }
func (s *Session) InstallAPPHook(fn func(*rtcp.PacketAPP))     { s.scheduler.InstallAPPHook(fn) }

// Start runs the Scheduler's background loop until ctx is canceled or
// Stop is called. Intended to be run in its own goroutine by the
// caller, e.g. `go session.Start(ctx)`.
func (s *Session) Start(ctx context.Context) {
	s.scheduler.Run(ctx)
}

// Stop signals the background loop to exit on its next poll wakeup.
func (s *Session) Stop() {
	s.scheduler.Stop()
}

// OnRTPReceived feeds one received RTP frame through the reception
// quality estimator, promoting a pending entry to active on first
// sight of a new SSRC. Collision checks run first: a frame from our
// own SSRC or from a known SSRC at an unexpected address never
// reaches the estimator, per RFC 3550 §8.2's SSRC collision handling.
func (s *Session) OnRTPReceived(frame RTPFrame, src *net.UDPAddr) UpdateOutcome {
	if frame.SSRC == s.self.GetSSRC() {
		s.metrics.IncCollisions()
		oldSSRC := s.self.GetSSRC()
		s.scheduler.SendBye(oldSSRC)
		if err := s.collision.ResolveSelfCollision(s.self); err != nil {
			return Rejected
		}
		emit(s.bus, EventSelfCollision{OldSSRC: oldSSRC, NewSSRC: s.self.GetSSRC()})
		if s.rtp != nil {
			s.rtp.SetSSRC(s.self.GetSSRC())
		}
		return Rejected
	}
	if s.collision.CheckRemote(frame.SSRC, src) {
		s.metrics.IncCollisions()
		emit(s.bus, EventRemoteCollision{SSRC: frame.SSRC})
		return Rejected
	}

	if !s.table.IsKnown(frame.SSRC) {
		clockRate := uint32(0)
		if s.rtp != nil {
			clockRate = s.rtp.GetClockRate()
		}
		p := s.table.Promote(frame.SSRC, frame.SeqNumber, frame.Timestamp, s.estimator.NTPNow(), src, clockRate)
		emit(s.bus, EventParticipantPromoted{SSRC: frame.SSRC})

		UpdateFirst(p, s.estimator, frame)
		s.table.Touch(frame.SSRC)
		s.metrics.AddBytesReceived(frame.PayloadLen)
		return Accepted
	}

	p, ok := s.table.Get(frame.SSRC)
	if !ok {
		return Rejected
	}

	p.RLock()
	wasOnProbation := p.Stats.Probation > 0
	p.RUnlock()

	outcome := Update(p, s.estimator, frame)
	s.table.Touch(frame.SSRC)
	if outcome != Rejected {
		s.metrics.AddBytesReceived(frame.PayloadLen)
	}

	if wasOnProbation {
		p.RLock()
		passed := p.Stats.Probation == 0
		p.RUnlock()
		if passed {
			emit(s.bus, EventProbationPassed{SSRC: frame.SSRC})
		}
	}
	return outcome
}

// UpdateSenderStats records one sent RTP packet against the session's
// own counters. Called by the RTP data path on every sent packet.
func (s *Session) UpdateSenderStats(frame RTPFrame) {
	s.self.AddSent(frame.PayloadLen)
	s.metrics.AddBytesSent(frame.PayloadLen)
	s.scheduler.MarkSent()
}
