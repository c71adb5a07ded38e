package uvgrtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kar8uncle/uvgRTP/clock"
)

func newProbationStats(firstSeq uint16) ReceptionStats {
	return ReceptionStats{
		Probation: MinSequential,
		BaseSeq:   firstSeq,
		MaxSeq:    firstSeq,
		BadSeq:    1<<16 + 1,
	}
}

func TestUpdateSeqPassesProbationOnConsecutivePackets(t *testing.T) {
	s := newProbationStats(100)

	require.Equal(t, Rejected, UpdateSeq(&s, 101))
	require.Equal(t, 1, s.Probation)

	require.Equal(t, Accepted, UpdateSeq(&s, 102))
	require.Equal(t, 0, s.Probation)
	// reinitSeq resets base_seq/max_seq to the packet that completed probation
	assert.EqualValues(t, 102, s.BaseSeq)
	assert.EqualValues(t, 102, s.MaxSeq)
}

func TestUpdateSeqRestartsProbationOnGap(t *testing.T) {
	s := newProbationStats(100)

	require.Equal(t, Rejected, UpdateSeq(&s, 101))
	require.Equal(t, 1, s.Probation)

	// a gap resets probation rather than completing it
	outcome := UpdateSeq(&s, 105)
	assert.Equal(t, Rejected, outcome)
	assert.Equal(t, MinSequential-1, s.Probation)
	assert.EqualValues(t, 105, s.MaxSeq)
}

func TestUpdateSeqAcceptsSteadyState(t *testing.T) {
	s := ReceptionStats{BaseSeq: 0, MaxSeq: 100}

	outcome := UpdateSeq(&s, 101)
	assert.Equal(t, Accepted, outcome)
	assert.EqualValues(t, 101, s.MaxSeq)
	assert.EqualValues(t, 0, s.Cycles)
}

func TestUpdateSeqCycleWrapIncrementsCycles(t *testing.T) {
	s := ReceptionStats{MaxSeq: 0xFFFE}

	outcome := UpdateSeq(&s, 2) // wraps past 0xFFFF
	assert.Equal(t, Accepted, outcome)
	assert.EqualValues(t, 2, s.MaxSeq)
	assert.EqualValues(t, 1<<16, s.Cycles)
}

func TestUpdateSeqLargeJumpIsRejectedThenResyncs(t *testing.T) {
	s := ReceptionStats{MaxSeq: 100}

	outcome := UpdateSeq(&s, 5000) // beyond MaxDropout
	assert.Equal(t, Rejected, outcome)
	assert.EqualValues(t, 5001, s.BadSeq)

	// the next packet, continuing steadily from the jumped location,
	// confirms the jump rather than noise and triggers resync.
	outcome = UpdateSeq(&s, 5001)
	assert.Equal(t, AcceptedResync, outcome)
	assert.EqualValues(t, 5001, s.BaseSeq)
	assert.EqualValues(t, 5001, s.MaxSeq)
}

func TestUpdateSeqFarOldDuplicateIsAcceptedAsDuplicate(t *testing.T) {
	s := ReceptionStats{MaxSeq: 40000}

	// 50 behind MaxSeq: udelta wraps to just under 1<<16, past the
	// MaxMisorder boundary, so this is treated as a stale duplicate.
	outcome := UpdateSeq(&s, 39950)
	assert.Equal(t, AcceptedDuplicate, outcome)
	assert.EqualValues(t, 40000, s.MaxSeq) // unmodified
}

func TestUpdateJitterAccumulatesEMA(t *testing.T) {
	src := clock.NewSynthetic(0, 20) // 20ms steps
	s := &ReceptionStats{ClockRate: 8000, InitialRTP: 0, InitialNTP: 0}

	UpdateJitter(s, src, 0)
	assert.Zero(t, s.Jitter, "first sample only seeds PrevTransit")

	UpdateJitter(s, src, 160) // one 20ms tick's worth of RTP units at 8kHz
	assert.True(t, s.haveTransit)
	assert.Zero(t, s.Jitter, "constant spacing leaves transit unchanged")

	// arrival 59ms*8 = 472, transit 472-400 = 72, |72-152| = 80, 80/16 = 5
	UpdateJitter(s, src, 400)
	assert.InDelta(t, 5.0, s.Jitter, 1e-9)
}

func TestJitterEstimateNeverNegative(t *testing.T) {
	s := &ReceptionStats{Jitter: -1}
	assert.EqualValues(t, 0, s.JitterEstimate())

	s.Jitter = 42.9
	assert.EqualValues(t, 42, s.JitterEstimate())
}

func TestExtendedMaxSeqAndLost(t *testing.T) {
	s := &ReceptionStats{BaseSeq: 10, MaxSeq: 19, Cycles: 0, ReceivedPkts: 8}
	assert.EqualValues(t, 19, s.ExtendedMaxSeq())
	assert.EqualValues(t, 10, s.Expected()) // 19-10+1
	assert.EqualValues(t, 2, s.Lost())      // 10 expected - 8 received

	// duplicates can make received exceed expected; Lost must clamp to 0
	s.ReceivedPkts = 50
	assert.EqualValues(t, 0, s.Lost())
}

func TestUpdateFirstDoesNotTouchSequenceState(t *testing.T) {
	table := NewParticipantTable()
	src := clock.NewSynthetic(0, 20)
	p := table.Promote(0xAAAA, 1000, 0, src.NTPNow(), nil, 8000)

	frame := RTPFrame{SSRC: 0xAAAA, SeqNumber: 1000, Timestamp: 0, PayloadLen: 160}
	UpdateFirst(p, src, frame)

	p.RLock()
	defer p.RUnlock()
	assert.EqualValues(t, 1, p.Stats.ReceivedPkts)
	assert.EqualValues(t, 160, p.Stats.ReceivedBytes)
	// Promote already set base_seq=max_seq=1000 (RFC 3550 init_seq); UpdateFirst
	// must not have re-run update_seq against it.
	assert.EqualValues(t, 1000, p.Stats.BaseSeq)
	assert.EqualValues(t, 1000, p.Stats.MaxSeq)
	assert.Equal(t, MinSequential, p.Stats.Probation)
	assert.Equal(t, RoleSender, p.Role)
}

func TestIntervalFractionLostMeasuresSinceLastSnapshotNotCumulative(t *testing.T) {
	s := &ReceptionStats{BaseSeq: 0, MaxSeq: 0, ReceivedPkts: 1}

	// first interval: 10 expected, 10 received -> no loss
	s.MaxSeq = 9
	s.ReceivedPkts = 10
	assert.EqualValues(t, 0, s.IntervalFractionLost())
	s.SnapshotReportPrior()

	// second interval: 10 more expected (seq up to 19), only 5 more received
	s.MaxSeq = 19
	s.ReceivedPkts = 15
	assert.EqualValues(t, 128, s.IntervalFractionLost()) // 5/10 lost == 0.5 * 256
	s.SnapshotReportPrior()

	// third interval: no further loss once packets resume steadily
	s.MaxSeq = 29
	s.ReceivedPkts = 25
	assert.EqualValues(t, 0, s.IntervalFractionLost(), "loss from a prior interval must not reappear in the next report")
}

func TestIntervalFractionLostClampsAt255(t *testing.T) {
	s := &ReceptionStats{MaxSeq: 0, ReceivedPkts: 0}
	s.SnapshotReportPrior()

	s.MaxSeq = 2000 // 2000 expected, 0 received this interval
	assert.EqualValues(t, 255, s.IntervalFractionLost())
}

func TestUpdateContinuesProbationAfterUpdateFirst(t *testing.T) {
	table := NewParticipantTable()
	src := clock.NewSynthetic(0, 20)
	p := table.Promote(0xBBBB, 1000, 0, src.NTPNow(), nil, 8000)
	UpdateFirst(p, src, RTPFrame{SSRC: 0xBBBB, SeqNumber: 1000, PayloadLen: 160})

	// still on probation (MinSequential=2): the next consecutive packet
	// decrements probation rather than completing it immediately.
	outcome := Update(p, src, RTPFrame{SSRC: 0xBBBB, SeqNumber: 1001, PayloadLen: 160})
	assert.Equal(t, Rejected, outcome)

	p.RLock()
	probation := p.Stats.Probation
	p.RUnlock()
	assert.Equal(t, 1, probation)

	outcome = Update(p, src, RTPFrame{SSRC: 0xBBBB, SeqNumber: 1002, PayloadLen: 160})
	assert.Equal(t, Accepted, outcome)
}

func TestUpdateCountsRejectedPacketsAsDropped(t *testing.T) {
	table := NewParticipantTable()
	src := clock.NewSynthetic(0, 20)
	p := table.Promote(0xCCCC, 1000, 0, src.NTPNow(), nil, 8000)
	UpdateFirst(p, src, RTPFrame{SSRC: 0xCCCC, SeqNumber: 1000, PayloadLen: 160})

	// a gap during probation is Rejected and must count as dropped.
	outcome := Update(p, src, RTPFrame{SSRC: 0xCCCC, SeqNumber: 1010, PayloadLen: 160})
	require.Equal(t, Rejected, outcome)

	p.RLock()
	defer p.RUnlock()
	assert.EqualValues(t, 1, p.Stats.DroppedPkts)
}
