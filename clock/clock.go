package clock

import (
	"sync/atomic"
	"time"
)

/*
 Source exposes the three time bases the RTCP control plane needs:
 NTP (64-bit, seconds.fraction since 1900-01-01 UTC), a high-resolution
 monotonic instant, and an RTP timestamp generator at a caller-supplied
 clock rate.

 @see https://tools.ietf.org/html/rfc3550#section-4
*/
type Source interface {
	NTPNow() uint64
	NTPDiffMS(a, b uint64) int64
	HRCNow() HRCInstant
	HRCDiffMS(a, b HRCInstant) int64
	RTPTimestampAt(rate uint32) uint32
}

// HRCInstant is an opaque monotonic reading. Only HRCDiffMS may be used
// to compare two instants; do not inspect its fields.
type HRCInstant struct {
	nanos int64
}

// Add returns the instant d later, used to compute absolute deadlines
// (e.g. tn = tp + T) without going back through wall-clock time:
// timeouts are expressed as absolute deadlines on the monotonic clock
// rather than re-derived durations, so a slow poll cycle cannot push
// the next deadline out indefinitely.
func (i HRCInstant) Add(d time.Duration) HRCInstant {
	return HRCInstant{nanos: i.nanos + int64(d)}
}

var ntpEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

/*
 System is the default clock.Source. ntp_now must never go backward
 across successive calls in a single process: a monotonic base is
 captured once at construction (epochOffset, nanoseconds between the
 NTP epoch and the monotonic clock's zero point as observed at startup)
 and every subsequent reading is offset + elapsed monotonic time, so
 wall-clock adjustments after startup cannot move readings backward.
*/
type System struct {
	epochOffsetNanos int64
	startMonoNanos   int64
	startedAt        time.Time
}

func NewSystem() *System {
	s := new(System)
	now := time.Now()
	s.startedAt = now
	s.epochOffsetNanos = int64(now.Sub(ntpEpoch))
	s.startMonoNanos = nanosSinceStart(s, now)
	return s
}

func nanosSinceStart(s *System, t time.Time) int64 {
	return int64(t.Sub(s.startedAt))
}

func (s *System) nowNanosSinceEpoch() int64 {
	elapsed := nanosSinceStart(s, time.Now())
	return s.epochOffsetNanos + elapsed
}

// NTPNow returns the current time as a 64-bit fixed-point NTP timestamp
// (32-bit seconds, 32-bit fraction), per RFC 3550 section 4.
func (s *System) NTPNow() uint64 {
	nanos := s.nowNanosSinceEpoch()
	const nanoPerSec = int64(1000000000)
	sec := nanos / nanoPerSec
	// round up the fraction so repeated conversions do not drift down.
	frac := (((nanos - sec*nanoPerSec) << 32) + nanoPerSec - 1) / nanoPerSec
	return uint64(sec&0xFFFFFFFF)<<32 | uint64(frac&0xFFFFFFFF)
}

// NTPDiffMS returns b-a in milliseconds for two NTP-format readings.
func (s *System) NTPDiffMS(a, b uint64) int64 {
	aSec, aFrac := int64(a>>32), int64(a&0xFFFFFFFF)
	bSec, bFrac := int64(b>>32), int64(b&0xFFFFFFFF)
	aMs := aSec*1000 + (aFrac*1000)>>32
	bMs := bSec*1000 + (bFrac*1000)>>32
	return bMs - aMs
}

func (s *System) HRCNow() HRCInstant {
	return HRCInstant{nanos: nanosSinceStart(s, time.Now())}
}

func (s *System) HRCDiffMS(a, b HRCInstant) int64 {
	return (b.nanos - a.nanos) / 1000000
}

// RTPTimestampAt derives an RTP timestamp from the current monotonic
// reading scaled by rate (Hz), matching the way a media clock advances
// RTP timestamps independent of wall time.
func (s *System) RTPTimestampAt(rate uint32) uint32 {
	nanos := nanosSinceStart(s, time.Now())
	return uint32(int64(rate) * nanos / 1000000000)
}

// NTPToMiddle32 returns the middle 32 bits of a 64-bit NTP timestamp, as
// used in SR sender info / RR LSR fields.
func NTPToMiddle32(ntp uint64) uint32 {
	return uint32(ntp >> 16)
}

// counts NTPNow calls across all Synthetic clocks; nothing reads it.
var syntheticCounter int64

// Synthetic returns a clock.Source useful for deterministic tests: each
// NTPNow call advances the clock by exactly step instead of tracking the
// wall clock; HRCNow and RTPTimestampAt read the current position
// without advancing it.
type Synthetic struct {
	ntp  uint64
	step uint64
}

func NewSynthetic(startNTP uint64, stepMillis uint64) *Synthetic {
	return &Synthetic{ntp: startNTP, step: stepMillis << 32 / 1000}
}

func (s *Synthetic) NTPNow() uint64 {
	atomic.AddInt64(&syntheticCounter, 1)
	s.ntp += s.step
	return s.ntp
}

func (s *Synthetic) NTPDiffMS(a, b uint64) int64 {
	aSec, aFrac := int64(a>>32), int64(a&0xFFFFFFFF)
	bSec, bFrac := int64(b>>32), int64(b&0xFFFFFFFF)
	aMs := aSec*1000 + (aFrac*1000)>>32
	bMs := bSec*1000 + (bFrac*1000)>>32
	return bMs - aMs
}

func (s *Synthetic) HRCNow() HRCInstant {
	sec, frac := int64(s.ntp>>32), int64(s.ntp&0xFFFFFFFF)
	return HRCInstant{nanos: sec*1000000000 + (frac*1000000000)>>32}
}

func (s *Synthetic) HRCDiffMS(a, b HRCInstant) int64 {
	return (b.nanos - a.nanos) / 1000000
}

func (s *Synthetic) RTPTimestampAt(rate uint32) uint32 {
	return uint32(s.ntp >> 16 * uint64(rate) / 1000)
}
