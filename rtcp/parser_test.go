package rtcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kar8uncle/uvgRTP/rtcp"
)

type testLogger struct{}

func (testLogger) Debugf(format string, args ...interface{}) {}
func (testLogger) Infof(format string, args ...interface{})  {}
func (testLogger) Warnf(format string, args ...interface{})  {}
func (testLogger) Errorf(format string, args ...interface{}) {}

func newTestParser() *rtcp.Parser {
	return rtcp.NewParser(rtcp.Dependencies{Logger: testLogger{}})
}

func TestParseRoundTripsReceiverReport(t *testing.T) {
	rr := rtcp.NewPacketRR()
	rr.SSRC = 0xCAFEBABE
	rr.ReportBlocks = rtcp.ReportBlocks{{
		SSRC:         0x1234,
		FractionLost: 12,
		TotalLost:    34,
		HighestSeq:   5000,
		Jitter:       7,
		LSR:          8,
		DLSR:         9,
	}}

	pkt := rtcp.NewPacket()
	pkt.SetData(rr.Bytes())

	frames, err := newTestParser().Parse(pkt)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	got, ok := frames[0].(*rtcp.PacketRR)
	require.True(t, ok)
	assert.EqualValues(t, 0xCAFEBABE, got.SSRC)
	require.Len(t, got.ReportBlocks, 1)
	assert.EqualValues(t, 0x1234, got.ReportBlocks[0].SSRC)
	assert.EqualValues(t, 12, got.ReportBlocks[0].FractionLost)
	assert.EqualValues(t, 34, got.ReportBlocks[0].TotalLost)
	assert.EqualValues(t, 5000, got.ReportBlocks[0].HighestSeq)
}

func TestParseRoundTripsSenderReportWithReportBlock(t *testing.T) {
	sr := rtcp.NewPacketSR()
	sr.SSRC = 0x42
	sr.SenderInfos.NTPSec = 111
	sr.SenderInfos.NTPFrac = 222
	sr.SenderInfos.RTPTimestamp = 333
	sr.SenderInfos.PacketCount = 10
	sr.SenderInfos.OctetCount = 1600
	sr.ReportBlocks = rtcp.ReportBlocks{{SSRC: 0x99, HighestSeq: 42}}

	pkt := rtcp.NewPacket()
	pkt.SetData(sr.Bytes())

	frames, err := newTestParser().Parse(pkt)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	got, ok := frames[0].(*rtcp.PacketSR)
	require.True(t, ok)
	assert.EqualValues(t, 0x42, got.SSRC)
	assert.EqualValues(t, 111, got.SenderInfos.NTPSec)
	assert.EqualValues(t, 10, got.SenderInfos.PacketCount)
	assert.EqualValues(t, 1600, got.SenderInfos.OctetCount)
	require.Len(t, got.ReportBlocks, 1)
	assert.EqualValues(t, 0x99, got.ReportBlocks[0].SSRC)
}

func TestParseRoundTripsCompoundPacket(t *testing.T) {
	rr := rtcp.NewPacketRR()
	rr.SSRC = 1

	bye := rtcp.NewPacketBYE()
	bye.SSRCs = rtcp.SSRCs{1}

	var compound []byte
	compound = append(compound, rr.Bytes()...)
	compound = append(compound, bye.Bytes()...)

	pkt := rtcp.NewPacket()
	pkt.SetData(compound)

	frames, err := newTestParser().Parse(pkt)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	_, ok := frames[0].(*rtcp.PacketRR)
	assert.True(t, ok)
	byeGot, ok := frames[1].(*rtcp.PacketBYE)
	require.True(t, ok)
	assert.EqualValues(t, rtcp.SSRCs{1}, byeGot.SSRCs)
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	rr := rtcp.NewPacketRR()
	rr.SSRC = 1
	data := rr.Bytes()
	data[0] = data[0]&^0xC0 | (1 << 6) // force version=1

	pkt := rtcp.NewPacket()
	pkt.SetData(data)

	_, err := newTestParser().Parse(pkt)
	assert.Error(t, err)
}
