package rtcp

import (
	"encoding/binary"
	"fmt"
)

/*
PacketRR is a receiver report, sent by a participant that has received
but not sent RTP in the current interval, RFC 3550 §6.4.2:

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	:                        header (PT=201)                        :
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                         SSRC of sender                        |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                         report block 1                        |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	:                  ... other report blocks ...                  |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                  profile-specific extensions                  |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/
type PacketRR struct {
	PacketRTCP
	SSRC         uint32
	ReportBlocks ReportBlocks
}

func NewPacketRR() *PacketRR {
	return &PacketRR{}
}

func (p *PacketRR) ParsePacketRTCP(packet *PacketRTCP) error {
	p.PacketRTCP = *packet
	offset := packet.GetOffset()

	const ssrcSize = 4
	if p.GetSize() < offset+ssrcSize {
		return fmt.Errorf("%w: RR ssrc", ErrTruncated)
	}
	p.SSRC = binary.BigEndian.Uint32(p.GetData()[offset : offset+ssrcSize])
	offset += ssrcSize

	for remaining := p.Header.ReceptionCount; remaining > 0; remaining-- {
		rb := NewReportBlock()
		if p.GetSize() < offset {
			return fmt.Errorf("%w: RR report block", ErrTruncated)
		}
		if err := rb.Parse(p.GetData()[offset:]); err != nil {
			return err
		}
		p.ReportBlocks = append(p.ReportBlocks, *rb)
		offset += rb.GetSize()
	}
	return nil
}

// ComputeHeaders fills in the RTCP header fields from the current
// report block list.
func (p *PacketRR) ComputeHeaders() {
	p.PacketRTCP.Header.Version = 2
	p.PacketRTCP.Header.Padding = false
	p.PacketRTCP.Header.ReceptionCount = uint8(len(p.ReportBlocks))
	p.PacketRTCP.Header.PacketType = PT_RR
	p.PacketRTCP.Header.Length = uint16(1 /* SSRC */ + p.ReportBlocks.Words())
}

func (p *PacketRR) Bytes() []byte {
	p.ComputeHeaders()

	result := append([]byte{}, p.PacketRTCP.Bytes()...)
	result = append(result, uint32ToBytes(p.SSRC)...)
	result = append(result, p.ReportBlocks.Bytes()...)
	return result
}

func (p *PacketRR) String() string {
	return fmt.Sprintf(
		"[RTCP-RR %s ssrc=%d %s]",
		p.PacketRTCP.String(),
		p.SSRC,
		p.ReportBlocks.String(),
	)
}
