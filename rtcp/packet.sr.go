package rtcp

import (
	"encoding/binary"
	"fmt"
)

/*
PacketSR is a sender report, sent by a participant that has sent RTP
in the current interval, RFC 3550 §6.4.1:

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	:                        header (PT=200)                        :
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                         SSRC of sender                        |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                         sender infos                          |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                         report block 1                        |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	:                  ... other report blocks ...                  |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                  profile-specific extensions                  |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

senderInfosWords is SenderInfos's fixed 20-byte encoding expressed in
32-bit words, used by ComputeHeaders alongside the SSRC word and the
variable-length report block list.
*/
const senderInfosWords = 5

type PacketSR struct {
	PacketRTCP
	SSRC         uint32
	SenderInfos  SenderInfos
	ReportBlocks ReportBlocks
}

func NewPacketSR() *PacketSR {
	return &PacketSR{}
}

func (p *PacketSR) ParsePacketRTCP(packet *PacketRTCP) error {
	p.PacketRTCP = *packet
	offset := packet.GetOffset()

	const ssrcSize = 4
	if p.GetSize() < offset+ssrcSize {
		return fmt.Errorf("%w: SR ssrc", ErrTruncated)
	}
	p.SSRC = binary.BigEndian.Uint32(p.GetData()[offset : offset+ssrcSize])
	offset += ssrcSize

	if p.GetSize() < offset {
		return fmt.Errorf("%w: SR sender infos", ErrTruncated)
	}
	if err := p.SenderInfos.Parse(p.GetData()[offset:]); err != nil {
		return err
	}
	offset += p.SenderInfos.GetSize()

	for remaining := p.Header.ReceptionCount; remaining > 0; remaining-- {
		rb := NewReportBlock()
		if p.GetSize() < offset {
			return fmt.Errorf("%w: SR report block", ErrTruncated)
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
// sender infos and report block list.
func (p *PacketSR) ComputeHeaders() {
	p.PacketRTCP.Header.Version = 2
	p.PacketRTCP.Header.Padding = false
	p.PacketRTCP.Header.ReceptionCount = uint8(len(p.ReportBlocks))
	p.PacketRTCP.Header.PacketType = PT_SR
	p.PacketRTCP.Header.Length = uint16(1 /* SSRC */ + senderInfosWords + p.ReportBlocks.Words())
}

func (p *PacketSR) Bytes() []byte {
	p.ComputeHeaders()

	result := append([]byte{}, p.PacketRTCP.Bytes()...)
	result = append(result, uint32ToBytes(p.SSRC)...)
	result = append(result, p.SenderInfos.Bytes()...)
	result = append(result, p.ReportBlocks.Bytes()...)
	return result
}

func (p *PacketSR) String() string {
	return fmt.Sprintf(
		"[RTCP-SR %s ssrc=%d %s %s]",
		p.PacketRTCP.String(),
		p.SSRC,
		p.SenderInfos.String(),
		p.ReportBlocks.String(),
	)
}
