package rtcp

import (
	"encoding/binary"
	"fmt"
)

/*
  @see https://tools.ietf.org/html/rfc3550#section-6.7

			0                   1                   2                   3
			0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
		 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
		 |V=2|P| subtype |   PT=APP=204  |             length            |
		 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
		 |                           SSRC/CSRC                           |
		 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
		 |                          name (ASCII)                         |
		 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
		 |                   application-dependent data                ...
		 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/
type PacketAPP struct {
	PacketRTCP
	SSRC    uint32
	Name    [4]byte
	AppData []byte
	// private
	size int
}

func NewPacketAPP() *PacketAPP {
	return new(PacketAPP)
}

func (p *PacketAPP) ParsePacketRTCP(packet *PacketRTCP) error {
	// load packet
	p.PacketRTCP = *packet
	// setup offset
	offset := packet.GetOffset()
	if p.GetSize() < offset+8 {
		return fmt.Errorf("%w: PacketAPP ssrc+name", ErrTruncated)
	}
	p.SSRC = binary.BigEndian.Uint32(p.GetData()[offset : offset+4])
	copy(p.Name[:], p.GetData()[offset+4:offset+8])
	offset += 8
	end := p.Header.GetFullPacketSize()
	if end < offset {
		return fmt.Errorf("%w: PacketAPP data", ErrTruncated)
	}
	if end > offset {
		p.AppData = append([]byte{}, p.GetData()[offset:end]...)
	}
	p.size = end
	return nil
}

// ComputeHeaders fills in the RTCP header fields from the current
// AppData length. AppData must already be padded to a multiple of 4.
func (p *PacketAPP) ComputeHeaders(subtype uint8) {
	p.PacketRTCP.Header.Version = 2
	p.PacketRTCP.Header.Padding = false
	p.PacketRTCP.Header.ReceptionCount = subtype & 0x1F
	p.PacketRTCP.Header.PacketType = PT_APP
	dataWords := len(p.AppData) / 4
	p.PacketRTCP.Header.Length = uint16(1 /* SSRC */ + 1 /* name */ + dataWords)
}

func (p *PacketAPP) Bytes() []byte {
	var result []byte

	p.ComputeHeaders(p.Header.ReceptionCount)
	result = append(result, p.PacketRTCP.Bytes()...)
	result = append(result, uint32ToBytes(p.SSRC)...)
	result = append(result, p.Name[:]...)
	result = append(result, p.AppData...)
	return result
}

func (p *PacketAPP) String() string {
	return fmt.Sprintf(
		"[RTCP-APP %s ssrc=%d name=%s datalen=%d]",
		p.PacketRTCP.String(),
		p.SSRC,
		string(p.Name[:]),
		len(p.AppData),
	)
}
