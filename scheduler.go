package uvgrtp

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	plogger "github.com/heytribe/go-plogger"
	"github.com/kar8uncle/uvgRTP/clock"
	"github.com/kar8uncle/uvgRTP/metrics"
	"github.com/kar8uncle/uvgRTP/my"
	"github.com/kar8uncle/uvgRTP/rtcp"
	"github.com/kar8uncle/uvgRTP/transport"
)

// dividingFactor is RFC 3550 §6.3.1's e - 3/2, applied so that the
// average interval converges to the computed T despite the randomized
// [0.5, 1.5] scaling.
const dividingFactor = 1.21828

/*
 Scheduler is the single background loop driving RTCP, generalized
 from PipelineNodeRTCPReporterSR/RR's ctx.Done()-based Run loop
 (pipeline.node.rtcp-reporter-{sr,rr}.go) into the full poll-sockets,
 dispatch, recompute-interval, emit-report cycle RFC 3550 §6.2
 describes. The original per-node channel select loop becomes a
 socket-poll select loop here because RTCP has no upstream pipeline
 stage to receive frames from; it owns its own I/O.
*/
type Scheduler struct {
	table      *ParticipantTable
	self       *SelfState
	estimator  clock.Source
	collision  *CollisionDetector
	config     *Config
	sdes       *SDESRegistry
	metrics    *metrics.Collector
	parser     *rtcp.Parser

	avgRTCPSize float64
	initial     bool

	// weSent and active are touched from the data-path goroutine
	// (MarkSent, Stop) as well as Run's own goroutine, so they are
	// plain int32s mutated via sync/atomic rather than guarded by a
	// mutex, the same discipline SelfState's sender counters use.
	weSent int32
	active int32

	senderHook   func(*rtcp.PacketSR)
	receiverHook func(*rtcp.PacketRR)
	sdesHook     func(*rtcp.PacketSDES)
	appHook      func(*rtcp.PacketAPP)

	bus chan interface{}
}

func NewScheduler(table *ParticipantTable, self *SelfState, src clock.Source, cfg *Config, sdes *SDESRegistry, coll *metrics.Collector, bus chan interface{}) *Scheduler {
	s := new(Scheduler)
	s.table = table
	s.self = self
	s.estimator = src
	s.config = cfg
	s.sdes = sdes
	s.metrics = coll
	s.bus = bus
	s.collision = NewCollisionDetector(table)
	s.parser = rtcp.NewParser(rtcp.Dependencies{Logger: plogger.New()})
	s.avgRTCPSize = 128 // RFC 3550 §6.3 initial guess, refined on first receipt
	s.initial = true
	return s
}

func (s *Scheduler) InstallSenderHook(fn func(*rtcp.PacketSR))     { s.senderHook = fn }
func (s *Scheduler) InstallReceiverHook(fn func(*rtcp.PacketRR))   { s.receiverHook = fn }
func (s *Scheduler) InstallSDESHook(fn func(*rtcp.PacketSDES))     { s.sdesHook = fn }
func (s *Scheduler) InstallAPPHook(fn func(*rtcp.PacketAPP))       { s.appHook = fn }

// Run is the dedicated background loop. It exits on ctx.Done(),
// emitting an outstanding BYE first so peers learn of departure
// promptly rather than waiting out a timeout.
func (s *Scheduler) Run(ctx context.Context) {
	log := plogger.FromContextSafe(ctx).Prefix("Scheduler")
	atomic.StoreInt32(&s.active, 1)
	emit(s.bus, EventStarted{})

	tn := s.estimator.HRCNow().Add(s.computeInterval())

	for atomic.LoadInt32(&s.active) == 1 {
		timeout := s.pollTimeout(tn)
		readable := s.poll(timeout)
		for _, sock := range readable {
			s.readAndDispatch(ctx, sock, log)
		}

		select {
		case <-ctx.Done():
			atomic.StoreInt32(&s.active, 0)
			continue
		default:
		}

		tc := s.estimator.HRCNow()
		if s.estimator.HRCDiffMS(tn, tc) >= 0 {
			s.evictStale(log)
			s.emitReport(log)
			interval := s.computeInterval()
			tn = tc.Add(interval)
			atomic.StoreInt32(&s.weSent, 0)
			s.initial = false
		}

		select {
		case <-ctx.Done():
			atomic.StoreInt32(&s.active, 0)
		default:
		}
	}

	s.emitBye(log)
	emit(s.bus, EventStopped{})
}

// Stop signals the loop to exit on its next poll wakeup.
func (s *Scheduler) Stop() {
	atomic.StoreInt32(&s.active, 0)
}

// MarkSent records that at least one RTP packet has been sent since
// the last report, so the next emitted report is an SR rather than an
// RR and member accounting uses the sender count, per RFC 3550's
// we_sent flag. Safe to call from the data-path goroutine.
func (s *Scheduler) MarkSent() {
	atomic.StoreInt32(&s.weSent, 1)
}

func (s *Scheduler) pollTimeout(tn clock.HRCInstant) time.Duration {
	now := s.estimator.HRCNow()
	remainMS := int(s.estimator.HRCDiffMS(now, tn))
	floorMS := int(s.config.Rtcp.MinPollTimeout / time.Millisecond)
	return time.Duration(my.Max(remainMS, floorMS)) * time.Millisecond
}

// poll sets a single shared read timeout on every socket in the table
// and returns all of them. It does not check which sockets are readable
// and does not read; readAndDispatch's RecvFrom then blocks for up to
// the timeout on each returned socket in turn.
func (s *Scheduler) poll(timeout time.Duration) []transport.Socket {
	sockets := s.table.Sockets()
	var readable []transport.Socket
	for _, sock := range sockets {
		sock.SetReadTimeout(timeout)
		readable = append(readable, sock)
	}
	return readable
}

func (s *Scheduler) readAndDispatch(ctx context.Context, sock transport.Socket, log plogger.PLogger) {
	buf := make([]byte, 2048)
	n, src, err := sock.RecvFrom(buf)
	if err != nil || n == 0 {
		return
	}
	pkt := rtcp.NewPacket()
	pkt.SetData(buf[:n])

	frames, err := s.parser.Parse(pkt)
	if err != nil {
		log.Warnf("dropping malformed compound packet from %s: %s", src, err)
		return
	}

	s.metrics.IncPacketsReceived()
	s.updateAvgRTCPSize(n + 28) // UDP(8) + IP(20) header bytes, RFC 3550 §6.2

	for _, frame := range frames {
		s.dispatch(frame, src, log)
	}
}

func (s *Scheduler) updateAvgRTCPSize(pktSize int) {
	s.avgRTCPSize += (float64(pktSize) - s.avgRTCPSize) / 16
}

func (s *Scheduler) dispatch(frame interface{}, src *net.UDPAddr, log plogger.PLogger) {
	switch f := frame.(type) {
	case *rtcp.PacketSR:
		s.dispatchSSRC(f.SSRC, src, log, func(p *Participant) {
			p.Cached.SR = f
			p.LSR = clock.NTPToMiddle32(uint64(f.SenderInfos.NTPSec)<<32 | uint64(f.SenderInfos.NTPFrac))
			p.SRRecvAt = s.estimator.HRCNow()
			p.HaveLSR = true
		})
		if s.senderHook != nil {
			s.senderHook(f)
		}
	case *rtcp.PacketRR:
		s.dispatchSSRC(f.SSRC, src, log, func(p *Participant) {
			p.Cached.RR = f
		})
		if s.receiverHook != nil {
			s.receiverHook(f)
		}
	case *rtcp.PacketSDES:
		if len(f.Chunks) > 0 {
			s.dispatchSSRC(f.Chunks[0].SSRC, src, log, func(p *Participant) {
				p.Cached.SDES = f
			})
		}
		if s.sdesHook != nil {
			s.sdesHook(f)
		}
	case *rtcp.PacketBYE:
		for _, ssrc := range f.SSRCs {
			s.table.Remove(ssrc)
		}
	case *rtcp.PacketAPP:
		s.dispatchSSRC(f.SSRC, src, log, func(p *Participant) {
			p.Cached.APP = f
		})
		if s.appHook != nil {
			s.appHook(f)
		}
	}
}

func (s *Scheduler) dispatchSSRC(ssrc uint32, src *net.UDPAddr, log plogger.PLogger, apply func(*Participant)) {
	if ssrc == s.self.GetSSRC() {
		s.metrics.IncCollisions()
		oldSSRC := s.self.GetSSRC()
		s.emitByeFor(oldSSRC, log)
		if err := s.collision.ResolveSelfCollision(s.self); err != nil {
			log.Warnf("self-SSRC collision could not be resolved: %s", err)
		} else {
			emit(s.bus, EventSelfCollision{OldSSRC: oldSSRC, NewSSRC: s.self.GetSSRC()})
		}
		return
	}
	if s.collision.CheckRemote(ssrc, src) {
		s.metrics.IncCollisions()
		emit(s.bus, EventRemoteCollision{SSRC: ssrc})
		log.Warnf("dropping packet: ssrc %#x known under a different address", ssrc)
		return
	}

	p, ok := s.table.Get(ssrc)
	if !ok {
		return
	}
	p.Lock()
	apply(p)
	p.LastRTPRecvd = s.estimator.HRCNow()
	p.Unlock()
	s.table.Touch(ssrc)
}

// evictStale pops candidates off the back of the table's last-seen
// order (oldest first) and removes any that have had no RTP/RTCP
// activity for longer than the configured stale timeout. It stops at
// the first candidate that is still live, since everything ahead of
// it in the order is even more recently active.
func (s *Scheduler) evictStale(log plogger.PLogger) {
	for {
		ssrc, ok := s.table.PopOldest()
		if !ok {
			return
		}
		p, ok := s.table.Get(ssrc)
		if !ok {
			continue // already removed by BYE or an earlier collision
		}

		p.RLock()
		lastSeen := p.LastRTPRecvd
		p.RUnlock()

		idleMS := s.estimator.HRCDiffMS(lastSeen, s.estimator.HRCNow())
		if time.Duration(idleMS)*time.Millisecond < s.config.Rtcp.StaleTimeout {
			s.table.Touch(ssrc)
			return
		}

		log.Infof("evicting ssrc %#x after %s of inactivity", ssrc, s.config.Rtcp.StaleTimeout)
		s.table.Remove(ssrc)
		emit(s.bus, EventParticipantTimedOut{SSRC: ssrc})
	}
}

// computeInterval implements RFC 3550 §6.3.1's randomized reconsideration
// interval.
func (s *Scheduler) computeInterval() time.Duration {
	tmin := s.config.Rtcp.MinInterval
	if s.initial {
		tmin = s.config.Rtcp.MinIntervalInitial
	}

	senders, receivers := s.memberCounts()
	n := senders + receivers
	if atomic.LoadInt32(&s.weSent) == 1 {
		n = senders
	}
	if n < 1 {
		n = 1
	}

	rtcpBandwidth := s.estimateRTCPBandwidth()
	t := float64(n) * s.avgRTCPSize / rtcpBandwidth
	if t < tmin.Seconds() {
		t = tmin.Seconds()
	}

	scaled := t * (0.5 + randFloat()) / dividingFactor
	return time.Duration(scaled * float64(time.Second))
}

// estimateRTCPBandwidth derives the RTCP bandwidth budget from the
// configured fraction of an assumed session bandwidth, per RFC 3550
// §6.2's "known fraction of the session bandwidth."
func (s *Scheduler) estimateRTCPBandwidth() float64 {
	return s.config.Rtcp.BandwidthFraction * assumedSessionBandwidthBytesPerSec
}

const assumedSessionBandwidthBytesPerSec = 64000.0 / 8

func (s *Scheduler) memberCounts() (senders, receivers int) {
	for _, ssrc := range s.table.GetParticipants() {
		p, ok := s.table.Get(ssrc)
		if !ok {
			continue
		}
		p.RLock()
		role := p.Role
		p.RUnlock()
		if role == RoleSender {
			senders++
		} else {
			receivers++
		}
	}
	return
}

func (s *Scheduler) emitReport(log plogger.PLogger) {
	destinations := s.table.Destinations()
	if len(destinations) == 0 {
		return
	}

	report := rtcp.NewCompound()
	if atomic.LoadInt32(&s.weSent) == 1 {
		report.Add(s.buildSR())
	} else {
		report.Add(s.buildRR())
	}
	report.Add(s.buildSDES())
	compound := report.Bytes()

	for _, dst := range destinations {
		if _, err := dst.Socket.SendTo(dst.Addr, compound); err != nil {
			log.Warnf("send error during report emission: %s", err)
		}
	}
	s.metrics.IncPacketsSent()
	s.updateAvgRTCPSize(len(compound) + 28)
}

func (s *Scheduler) buildSR() *rtcp.PacketSR {
	p := rtcp.NewPacketSR()
	p.SSRC = s.self.GetSSRC()

	now := s.estimator.NTPNow()
	p.SenderInfos.NTPSec = uint32(now >> 32)
	p.SenderInfos.NTPFrac = uint32(now & 0xFFFFFFFF)
	p.SenderInfos.RTPTimestamp = s.estimator.RTPTimestampAt(s.self.GetClockRate())
	pkts, bytes := s.self.LoadSent()
	p.SenderInfos.PacketCount = uint32(pkts)
	p.SenderInfos.OctetCount = uint32(bytes)

	p.ReportBlocks = s.buildReportBlocks()
	return p
}

func (s *Scheduler) buildRR() *rtcp.PacketRR {
	p := rtcp.NewPacketRR()
	p.SSRC = s.self.GetSSRC()
	p.ReportBlocks = s.buildReportBlocks()
	return p
}

func (s *Scheduler) buildReportBlocks() rtcp.ReportBlocks {
	var blocks rtcp.ReportBlocks
	for _, ssrc := range s.table.GetParticipants() {
		p, ok := s.table.Get(ssrc)
		if !ok {
			continue
		}
		p.Lock()
		block := rtcp.ReportBlock{
			SSRC:         ssrc,
			FractionLost: p.Stats.IntervalFractionLost(),
			TotalLost:    p.Stats.Lost(),
			HighestSeq:   p.Stats.ExtendedMaxSeq(),
			Jitter:       p.Stats.JitterEstimate(),
			LSR:          p.LSR,
			DLSR:         s.delaySinceLastSR(p),
		}
		dropped := p.Stats.DroppedPkts
		p.Stats.SnapshotReportPrior()
		p.Unlock()
		blocks = append(blocks, block)
		s.metrics.RecordJitter(ssrc, block.Jitter)
		s.metrics.RecordFractionLost(ssrc, float64(block.FractionLost)/256)
		s.metrics.RecordPacketsDropped(ssrc, dropped)
	}
	s.metrics.SetActiveMembers(len(blocks) + 1) // + self
	return blocks
}

func (s *Scheduler) delaySinceLastSR(p *Participant) uint32 {
	if !p.HaveLSR {
		return 0
	}
	ms := s.estimator.HRCDiffMS(p.SRRecvAt, s.estimator.HRCNow())
	if ms < 0 {
		return 0
	}
	return uint32(float64(ms) * 65536 / 1000)
}

func (s *Scheduler) buildSDES() *rtcp.PacketSDES {
	p := rtcp.NewPacketSDES()
	chunk := rtcp.SDESChunk{SSRC: s.self.GetSSRC()}
	for kind, text := range s.sdes.Items() {
		chunk.Items = append(chunk.Items, rtcp.SDESItem{Typ: kind, Text: text})
	}
	chunk.Items = append(chunk.Items, rtcp.SDESItem{Typ: rtcp.SDES_NULL})
	p.Chunks = rtcp.SDESChunks{chunk}
	return p
}

// emitBye sends BYE for self on session shutdown, applying the RFC
// 3550 §6.3.7 reconsideration delay at large member counts.
func (s *Scheduler) emitBye(log plogger.PLogger) {
	members := s.table.Count() + 1 // + self
	if members >= s.config.Rtcp.ReconsiderationThreshold {
		scaled := s.computeInterval().Seconds() * float64(members) / float64(s.config.Rtcp.ReconsiderationThreshold)
		time.Sleep(time.Duration(scaled * float64(time.Second)))
	}
	s.emitByeFor(s.self.GetSSRC(), log)
}

// emitByeFor sends an immediate BYE for ssrc, used both by shutdown
// (after any reconsideration delay) and by self-collision recovery,
// which must emit BYE before the SSRC changes.
func (s *Scheduler) emitByeFor(ssrc uint32, log plogger.PLogger) {
	p := rtcp.NewPacketBYE()
	p.SSRCs = rtcp.SSRCs{ssrc}

	for _, dst := range s.table.Destinations() {
		if _, err := dst.Socket.SendTo(dst.Addr, p.Bytes()); err != nil {
			log.Warnf("send error during BYE emission: %s", err)
		}
	}
}

// SendBye emits an immediate BYE for ssrc outside the normal report
// cycle, for collisions detected on the RTP data path (Session.
// OnRTPReceived) rather than the RTCP dispatch path this Scheduler
// already handles for itself.
func (s *Scheduler) SendBye(ssrc uint32) {
	s.emitByeFor(ssrc, plogger.New())
}

func randFloat() float64 {
	return float64(randUint64()%1000000) / 1000000
}
