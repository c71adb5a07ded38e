package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

/*
 Collector exposes the RTCP control plane's counters/gauges as a pure
 Prometheus collector, generalized from the HTTP-handler pattern of
 initPromHandler: the host application owns the HTTP server and the
 registerer, this package only registers gauges/counters against
 whatever Registerer it is given.
*/
type Collector struct {
	PacketsSent     prometheus.Counter
	PacketsReceived prometheus.Counter
	BytesSent       prometheus.Counter
	BytesReceived   prometheus.Counter
	Jitter          *prometheus.GaugeVec
	FractionLost    *prometheus.GaugeVec
	PacketsDropped  *prometheus.GaugeVec
	Collisions      prometheus.Counter
	ActiveMembers   prometheus.Gauge

	jitterHistory *CircularFIFO
}

// NewCollector creates and registers the collector's metrics against reg.
// historySize bounds the rolling jitter sample window kept
// in memory for diagnostic snapshots (see RecentJitter).
func NewCollector(reg prometheus.Registerer, namespace string, historySize int) (*Collector, error) {
	c := &Collector{
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rtcp_packets_sent_total",
			Help: "Total RTCP compound packets emitted.",
		}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rtcp_packets_received_total",
			Help: "Total RTCP compound packets accepted.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rtp_bytes_sent_total",
			Help: "Total RTP payload bytes sent by the local source.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rtp_bytes_received_total",
			Help: "Total RTP payload bytes received across all participants.",
		}),
		Jitter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rtp_jitter",
			Help: "Last computed interarrival jitter estimate, per SSRC.",
		}, []string{"ssrc"}),
		FractionLost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rtcp_fraction_lost",
			Help: "Last reported fraction lost (0..255/256), per SSRC.",
		}, []string{"ssrc"}),
		PacketsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rtp_packets_dropped_total",
			Help: "Cumulative RTP packets rejected by the sequence estimator, per SSRC.",
		}, []string{"ssrc"}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ssrc_collisions_total",
			Help: "Total SSRC collisions detected (address mismatch or self collision).",
		}),
		ActiveMembers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "session_members",
			Help: "Estimated number of session members at the last recomputation.",
		}),
		jitterHistory: NewCircularFIFO(historySize),
	}

	if reg == nil {
		// Metrics still update in memory (Inc/Set work on unregistered
		// collectors); only exposition via a Gatherer is unavailable.
		return c, nil
	}

	collectors := []prometheus.Collector{
		c.PacketsSent, c.PacketsReceived, c.BytesSent, c.BytesReceived,
		c.Jitter, c.FractionLost, c.PacketsDropped, c.Collisions, c.ActiveMembers,
	}
	for _, coll := range collectors {
		if err := reg.Register(coll); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// JitterSample is one rolling-window entry recorded by RecordJitter.
type JitterSample struct {
	SSRC   uint32
	Jitter uint32
}

// RecordJitter updates both the Prometheus gauge and the rolling
// in-memory history for ssrc.
func (c *Collector) RecordJitter(ssrc uint32, jitter uint32) {
	c.Jitter.WithLabelValues(ssrcLabel(ssrc)).Set(float64(jitter))
	c.jitterHistory.PushBack(JitterSample{SSRC: ssrc, Jitter: jitter})
}

// RecentJitter returns the most recently recorded jitter samples across
// all sources, oldest first.
func (c *Collector) RecentJitter() []JitterSample {
	var samples []JitterSample
	c.jitterHistory.Do(func(v interface{}) {
		if s, ok := v.(JitterSample); ok {
			samples = append(samples, s)
		}
	})
	return samples
}

// LastJitterSample returns the most recently recorded jitter sample
// across all sources, or ok=false if none has been recorded yet.
func (c *Collector) LastJitterSample() (sample JitterSample, ok bool) {
	v := c.jitterHistory.GetLast()
	if v == nil {
		return JitterSample{}, false
	}
	sample, ok = v.(JitterSample)
	return sample, ok
}

// RecordFractionLost updates the per-source fraction-lost gauge,
// expressed as the 0..1 ratio (not the Q8 wire encoding).
func (c *Collector) RecordFractionLost(ssrc uint32, fraction float64) {
	c.FractionLost.WithLabelValues(ssrcLabel(ssrc)).Set(fraction)
}

// RecordPacketsDropped updates the per-source dropped-packet gauge to
// the sequence estimator's current cumulative count for ssrc.
func (c *Collector) RecordPacketsDropped(ssrc uint32, dropped uint32) {
	c.PacketsDropped.WithLabelValues(ssrcLabel(ssrc)).Set(float64(dropped))
}

// IncPacketsSent counts one emitted RTCP compound packet.
func (c *Collector) IncPacketsSent() {
	c.PacketsSent.Inc()
}

// IncPacketsReceived counts one accepted RTCP compound packet.
func (c *Collector) IncPacketsReceived() {
	c.PacketsReceived.Inc()
}

// AddBytesSent accounts for RTP payload bytes sent by the local source.
func (c *Collector) AddBytesSent(n int) {
	c.BytesSent.Add(float64(n))
}

// AddBytesReceived accounts for RTP payload bytes accepted from a remote source.
func (c *Collector) AddBytesReceived(n int) {
	c.BytesReceived.Add(float64(n))
}

// IncCollisions counts one detected SSRC collision (address mismatch
// or self collision).
func (c *Collector) IncCollisions() {
	c.Collisions.Inc()
}

// SetActiveMembers records the session member count at the last
// recomputation.
func (c *Collector) SetActiveMembers(n int) {
	c.ActiveMembers.Set(float64(n))
}

func ssrcLabel(ssrc uint32) string {
	const hexDigits = "0123456789abcdef"
	buf := [8]byte{}
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[ssrc&0xF]
		ssrc >>= 4
	}
	return string(buf[:])
}
