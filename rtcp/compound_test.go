package rtcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kar8uncle/uvgRTP/rtcp"
)

func TestCompoundConcatenatesInAddOrder(t *testing.T) {
	rr := rtcp.NewPacketRR()
	rr.SSRC = 1
	bye := rtcp.NewPacketBYE()
	bye.SSRCs = rtcp.SSRCs{1}

	c := rtcp.NewCompound().Add(rr).Add(bye)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, append(rr.Bytes(), bye.Bytes()...), c.Bytes())
}

func TestCompoundRoundTripsThroughParser(t *testing.T) {
	rr := rtcp.NewPacketRR()
	rr.SSRC = 0xABCD
	sdes := rtcp.NewPacketSDES()
	sdes.Chunks = rtcp.SDESChunks{{SSRC: 0xABCD, Items: rtcp.SDESItems{{Typ: rtcp.SDES_NULL}}}}

	compound := rtcp.NewCompound().Add(rr).Add(sdes).Bytes()

	pkt := rtcp.NewPacket()
	pkt.SetData(compound)
	frames, err := rtcp.NewParser(rtcp.Dependencies{Logger: testLogger{}}).Parse(pkt)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	_, ok := frames[0].(*rtcp.PacketRR)
	assert.True(t, ok)
	_, ok = frames[1].(*rtcp.PacketSDES)
	assert.True(t, ok)
}
