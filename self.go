package uvgrtp

import (
	"sync/atomic"

	"github.com/kar8uncle/uvgRTP/my"
)

// SelfState holds the local session's own identity and counters,
// mirroring the shape of a remote Participant but keyed implicitly
// since there is exactly one. Sender counters are updated on every
// sent RTP packet from the data-path goroutine while the Scheduler
// reads them to compose SR, so they are plain uint64 fields mutated
// only through sync/atomic rather than the RWMutex, which instead
// guards SSRC/Stats.
type SelfState struct {
	my.RWMutex
	SSRC   uint32
	Stats  ReceptionStats
	Sender SenderStats
}

func NewSelfState(ssrc uint32) *SelfState {
	my.Assert(func() bool { return ssrc != 0 }, "NewSelfState: ssrc must be non-zero")
	return &SelfState{SSRC: ssrc}
}

func (s *SelfState) GetSSRC() uint32 {
	s.RLock()
	defer s.RUnlock()

	return s.SSRC
}

// SetClockRate records the RTP clock rate used for SR sender-info
// timestamps.
func (s *SelfState) SetClockRate(rate uint32) {
	s.Lock()
	defer s.Unlock()

	s.Stats.ClockRate = rate
}

func (s *SelfState) GetClockRate() uint32 {
	s.RLock()
	defer s.RUnlock()

	return s.Stats.ClockRate
}

// AddSent accounts for one sent RTP packet toward the SR sender info.
func (s *SelfState) AddSent(payloadLen int) {
	atomic.AddUint64(&s.Sender.SentPkts, 1)
	atomic.AddUint64(&s.Sender.SentBytes, uint64(payloadLen))
}

// LoadSent returns a consistent-enough snapshot of the sent counters
// for SR composition.
func (s *SelfState) LoadSent() (pkts, bytes uint64) {
	return atomic.LoadUint64(&s.Sender.SentPkts), atomic.LoadUint64(&s.Sender.SentBytes)
}
