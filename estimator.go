package uvgrtp

import "github.com/kar8uncle/uvgRTP/clock"

// UpdateOutcome reports what the sequence state machine did with a
// packet.
type UpdateOutcome int

const (
	Rejected UpdateOutcome = iota
	Accepted
	AcceptedResync
	AcceptedDuplicate
)

// reinitSeq resets the tracking fields the way RFC 3550's init_seq
// does, leaving probation and jitter untouched.
func reinitSeq(s *ReceptionStats, seq uint16) {
	s.BaseSeq = seq
	s.MaxSeq = seq
	s.BadSeq = 1<<16 + 1
	s.Cycles = 0
}

/*
 UpdateSeq runs one RTP packet's sequence number through the
 probation/accept/reject state machine, generalized from
 reporter.rr.go's flat jitter-only bookkeeping into the full RFC 3550
 Appendix A.1 machine (probation, MAX_DROPOUT large-jump detection,
 MAX_MISORDER bad_seq resync).
*/
func UpdateSeq(s *ReceptionStats, seq uint16) UpdateOutcome {
	udelta := seq - s.MaxSeq // unsigned 16-bit wraparound by construction

	if s.Probation > 0 {
		if seq == s.MaxSeq+1 {
			s.Probation--
			s.MaxSeq = seq
			if s.Probation == 0 {
				reinitSeq(s, seq)
				return Accepted
			}
			return Rejected
		}
		s.Probation = MinSequential - 1
		s.MaxSeq = seq
		return Rejected
	}

	if udelta < MaxDropout {
		if seq < s.MaxSeq {
			s.Cycles += 1 << 16
		}
		s.MaxSeq = seq
		return Accepted
	}

	if udelta <= 1<<16-MaxMisorder {
		if uint32(seq) == s.BadSeq {
			reinitSeq(s, seq)
			return AcceptedResync
		}
		s.BadSeq = (uint32(seq) + 1) & 0xFFFF
		return Rejected
	}

	return AcceptedDuplicate
}

// UpdateJitter applies the RFC 3550 Appendix A.8 interarrival jitter
// estimator: a 1/16-weighted exponential moving average of the
// absolute difference between successive transit times.
func UpdateJitter(s *ReceptionStats, src clock.Source, frameTimestamp uint32) {
	nowNTP := src.NTPNow()
	elapsedMS := src.NTPDiffMS(s.InitialNTP, nowNTP)
	arrivalRTP := s.InitialRTP + uint32(elapsedMS*int64(s.ClockRate)/1000)

	transit := int32(arrivalRTP) - int32(frameTimestamp)
	if s.haveTransit {
		d := transit - s.PrevTransit
		if d < 0 {
			d = -d
		}
		s.Jitter += (1.0 / 16.0) * (float64(d) - s.Jitter)
	}
	s.PrevTransit = transit
	s.haveTransit = true
}

// JitterEstimate truncates the floating-point estimator to the 32-bit
// unsigned integer reported in reception report blocks.
func (s *ReceptionStats) JitterEstimate() uint32 {
	if s.Jitter < 0 {
		return 0
	}
	return uint32(s.Jitter)
}

/*
 UpdateFirst records the very first RTP packet from a newly promoted
 participant. Promote already ran this same packet's sequence number
 through RFC 3550 Appendix A.1's init_seq (base_seq = max_seq = seq,
 probation = MIN_SEQUENTIAL), so it must not be run through UpdateSeq
 a second time; this only accounts the received packet/byte and seeds
 the jitter estimator's transit baseline.
*/
func UpdateFirst(p *Participant, src clock.Source, frame RTPFrame) {
	p.Lock()
	defer p.Unlock()

	p.Role = RoleSender
	p.LastRTPRecvd = src.HRCNow()
	p.Stats.ReceivedPkts++
	p.Stats.ReceivedBytes += uint64(frame.PayloadLen)
	UpdateJitter(&p.Stats, src, frame.Timestamp)
}

/*
 Update runs one accepted-at-the-table-level RTP packet through the
 estimator: sequence tracking, packet/byte counting, and jitter.
 Duplicate/reorder packets within MAX_MISORDER are accepted but make
 no stats change at all (not even a received-packet count), while
 resync and steady-state accepts count. Callers must use UpdateFirst,
 not Update, for the packet that triggered promotion.
*/
func Update(p *Participant, src clock.Source, frame RTPFrame) UpdateOutcome {
	p.Lock()
	defer p.Unlock()

	outcome := UpdateSeq(&p.Stats, frame.SeqNumber)
	p.Role = RoleSender
	p.LastRTPRecvd = src.HRCNow()
	switch outcome {
	case Accepted, AcceptedResync:
		p.Stats.ReceivedPkts++
		p.Stats.ReceivedBytes += uint64(frame.PayloadLen)
		UpdateJitter(&p.Stats, src, frame.Timestamp)
	case Rejected:
		p.Stats.DroppedPkts++
	}
	return outcome
}
