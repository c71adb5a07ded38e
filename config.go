package uvgrtp

import (
	"context"
	"time"

	plogger "github.com/heytribe/go-plogger"

	"github.com/kar8uncle/uvgRTP/my"
)

const (
	EnvDevelopment int = iota
	EnvProduction
)

// Config holds the session-wide tunables, populated from environment
// variables the way config.go's Init(ctx) does: typed fields, sane
// defaults, and a returned error logged through plogger rather than
// panicking.
type Config struct {
	Env     int
	PLogger string

	// Rtcp carries the RFC 3550 §6.2/§6.3 bandwidth and timing
	// parameters the Scheduler needs.
	Rtcp struct {
		BandwidthFraction float64       // fraction of session bandwidth reserved for RTCP
		MinInterval       time.Duration // Tmin, 5s per RFC 3550 unless Initial
		MinIntervalInitial time.Duration // 2.5s per RFC 3550 §6.3.1
		MinPollTimeout    time.Duration // lower bound on the socket poll timeout
		ReadTimeout       time.Duration // per-socket read deadline set at bind via SetReadTimeout, must be <= 5s
		ReconsiderationThreshold int    // member count at or above which BYE is delayed
		SDESHistorySize   int           // CircularFIFO depth for metrics.Collector
		StaleTimeout      time.Duration // no RTP/RTCP activity for this long => scheduler-detected timeout
	}
}

func NewConfig() *Config {
	c := new(Config)
	c.Rtcp.BandwidthFraction = 0.05
	c.Rtcp.MinInterval = 5 * time.Second
	c.Rtcp.MinIntervalInitial = 2500 * time.Millisecond
	c.Rtcp.MinPollTimeout = 5 * time.Millisecond
	c.Rtcp.ReadTimeout = 5 * time.Second
	c.Rtcp.ReconsiderationThreshold = 50
	c.Rtcp.SDESHistorySize = 30
	c.Rtcp.StaleTimeout = 60 * time.Second
	return c
}

func (c *Config) Init(ctx context.Context) (err error) {
	ctx = plogger.NewContextAddPrefix(ctx, "Config")
	log, _ := plogger.FromContext(ctx)

	c.Env = EnvDevelopment
	c.PLogger = my.Getenv("UVGRTP_DEBUG", "*:warn,tag*:warn")
	if my.Getenv("UVGRTP_ASSERT", "") != "" {
		my.EnableAssert()
	}

	c.Rtcp.BandwidthFraction, err = my.GetenvFloat("UVGRTP_RTCP_BW_FRACTION", c.Rtcp.BandwidthFraction)
	if log.OnError(err, "invalid env UVGRTP_RTCP_BW_FRACTION") {
		return
	}
	c.Rtcp.ReconsiderationThreshold, err = my.GetenvInt("UVGRTP_RECONSIDERATION_THRESHOLD", c.Rtcp.ReconsiderationThreshold)
	if log.OnError(err, "invalid env UVGRTP_RECONSIDERATION_THRESHOLD") {
		return
	}
	c.Rtcp.StaleTimeout, err = my.GetenvDuration("UVGRTP_STALE_TIMEOUT", c.Rtcp.StaleTimeout)
	if log.OnError(err, "invalid env UVGRTP_STALE_TIMEOUT") {
		return
	}
	return
}
