package uvgrtp

import (
	"net"
	"testing"
	"time"

	plogger "github.com/heytribe/go-plogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kar8uncle/uvgRTP/clock"
	"github.com/kar8uncle/uvgRTP/metrics"
	"github.com/kar8uncle/uvgRTP/rtcp"
)

func newTestScheduler(t *testing.T) (*Scheduler, *ParticipantTable, *SelfState) {
	t.Helper()
	table := NewParticipantTable()
	self := NewSelfState(0x1000)
	self.SetClockRate(8000)
	cfg := NewConfig()
	coll, err := metrics.NewCollector(nil, "uvgrtp_test", 8)
	require.NoError(t, err)
	sdes := NewSDESRegistry()
	sdes.Set(rtcp.SDES_CNAME, "test-cname")
	src := clock.NewSynthetic(0, 20)
	bus := make(chan interface{}, 16)
	return NewScheduler(table, self, src, cfg, sdes, coll, bus), table, self
}

func TestBuildSRUsesSelfSSRCAndSentCounters(t *testing.T) {
	s, _, self := newTestScheduler(t)
	self.AddSent(160)
	self.AddSent(160)

	sr := s.buildSR()
	assert.EqualValues(t, self.GetSSRC(), sr.SSRC)
	assert.EqualValues(t, 2, sr.SenderInfos.PacketCount)
	assert.EqualValues(t, 320, sr.SenderInfos.OctetCount)
}

func TestBuildReportBlocksOneBlockPerParticipant(t *testing.T) {
	s, table, _ := newTestScheduler(t)
	table.Promote(0x2000, 100, 0, 0, &net.UDPAddr{}, 8000)
	table.Promote(0x3000, 200, 0, 0, &net.UDPAddr{}, 8000)

	blocks := s.buildReportBlocks()
	require.Len(t, blocks, 2)

	ssrcs := []uint32{blocks[0].SSRC, blocks[1].SSRC}
	assert.ElementsMatch(t, []uint32{0x2000, 0x3000}, ssrcs)
}

func TestBuildReportBlocksUsesIntervalFractionLostAndSnapshots(t *testing.T) {
	s, table, _ := newTestScheduler(t)
	p := table.Promote(0x6000, 0, 0, 0, &net.UDPAddr{}, 8000)

	p.Lock()
	p.Stats.MaxSeq = 9
	p.Stats.ReceivedPkts = 5 // 10 expected, 5 received this interval: 50% lost
	p.Unlock()

	blocks := s.buildReportBlocks()
	require.Len(t, blocks, 1)
	assert.EqualValues(t, 128, blocks[0].FractionLost)

	// a second report with no further loss must not repeat the first
	// interval's fraction: buildReportBlocks snapshots priors as it goes.
	p.Lock()
	p.Stats.MaxSeq = 19
	p.Stats.ReceivedPkts = 15
	p.Unlock()

	blocks = s.buildReportBlocks()
	require.Len(t, blocks, 1)
	assert.EqualValues(t, 0, blocks[0].FractionLost)
}

func TestBuildSDESIncludesCNAMEAndNullTerminator(t *testing.T) {
	s, _, self := newTestScheduler(t)

	sdes := s.buildSDES()
	require.Len(t, sdes.Chunks, 1)
	chunk := sdes.Chunks[0]
	assert.EqualValues(t, self.GetSSRC(), chunk.SSRC)

	var sawCNAME, endsInNull bool
	for i, item := range chunk.Items {
		if item.Typ == rtcp.SDES_CNAME {
			sawCNAME = true
			assert.Equal(t, "test-cname", item.Text)
		}
		if i == len(chunk.Items)-1 {
			endsInNull = item.Typ == rtcp.SDES_NULL
		}
	}
	assert.True(t, sawCNAME)
	assert.True(t, endsInNull)
}

func TestComputeIntervalNeverBelowScaledMinimum(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.initial = false

	interval := s.computeInterval()
	// the randomized scaling factor is [0.5, 1.5] / 1.21828, so the floor
	// after scaling can dip under Tmin; only the unscaled t is bounded.
	assert.Greater(t, interval, time.Duration(0))
	minScaled := time.Duration(s.config.Rtcp.MinInterval.Seconds() * 0.5 / dividingFactor * float64(time.Second))
	assert.GreaterOrEqual(t, interval, minScaled)
}

func TestComputeIntervalUsesInitialMinimumBeforeFirstReport(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	require.True(t, s.initial)

	interval := s.computeInterval()
	assert.Greater(t, interval, time.Duration(0))
	maxScaled := time.Duration(s.config.Rtcp.MinIntervalInitial.Seconds() * 1.5 / dividingFactor * float64(time.Second))
	assert.LessOrEqual(t, interval, maxScaled)
}

func TestMarkSentSetsWeSentFlag(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.MarkSent()
	assert.EqualValues(t, 1, s.weSent)

	// no destinations registered, so emitReport must return early rather
	// than panic on a nil socket.
	s.emitReport(plogger.New())
}

func TestEvictStaleRemovesOnlyTimedOutParticipants(t *testing.T) {
	s, table, _ := newTestScheduler(t)
	s.config.Rtcp.StaleTimeout = 10 * time.Millisecond

	table.Promote(0x4000, 0, 0, 0, &net.UDPAddr{}, 8000)

	synth, ok := s.estimator.(*clock.Synthetic)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		synth.NTPNow() // each call advances the synthetic clock by a 20ms step
	}

	s.evictStale(plogger.New())
	assert.False(t, table.IsKnown(0x4000))
}

func TestEvictStaleKeepsFreshParticipants(t *testing.T) {
	s, table, _ := newTestScheduler(t)
	s.config.Rtcp.StaleTimeout = time.Hour

	table.Promote(0x5000, 0, 0, 0, &net.UDPAddr{}, 8000)

	s.evictStale(plogger.New())
	assert.True(t, table.IsKnown(0x5000))
}
