package rtcp

import (
	"encoding/binary"
	"fmt"
)

// senderInfosSize is the fixed wire size of a sender-info section,
// RFC 3550 §6.4.1.
const senderInfosSize = 20

/*
SenderInfos is the sender-specific block at the front of every SR,
RFC 3550 §6.4.1:

	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|              NTP timestamp, most significant word             |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|             NTP timestamp, least significant word             |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                         RTP timestamp                         |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                     sender's packet count                     |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                      sender's octet count                     |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
*/
type SenderInfos struct {
	NTPSec       uint32
	NTPFrac      uint32
	RTPTimestamp uint32
	PacketCount  uint32
	OctetCount   uint32
}

func NewSenderInfos() *SenderInfos {
	return &SenderInfos{}
}

func (s *SenderInfos) Parse(data []byte) error {
	if len(data) < senderInfosSize {
		return fmt.Errorf("%w: sender infos needs %d bytes, got %d", ErrTruncated, senderInfosSize, len(data))
	}

	s.NTPSec = binary.BigEndian.Uint32(data[0:4])
	s.NTPFrac = binary.BigEndian.Uint32(data[4:8])
	s.RTPTimestamp = binary.BigEndian.Uint32(data[8:12])
	s.PacketCount = binary.BigEndian.Uint32(data[12:16])
	s.OctetCount = binary.BigEndian.Uint32(data[16:20])
	return nil
}

func (s *SenderInfos) GetSize() int {
	return senderInfosSize
}

func (s *SenderInfos) Bytes() []byte {
	var buf [senderInfosSize]byte

	binary.BigEndian.PutUint32(buf[0:4], s.NTPSec)
	binary.BigEndian.PutUint32(buf[4:8], s.NTPFrac)
	binary.BigEndian.PutUint32(buf[8:12], s.RTPTimestamp)
	binary.BigEndian.PutUint32(buf[12:16], s.PacketCount)
	binary.BigEndian.PutUint32(buf[16:20], s.OctetCount)
	return buf[:]
}

func (s *SenderInfos) String() string {
	return fmt.Sprintf(
		"SI(ntps=%d ntpf=%d rtpt=%d pc=%d oc=%d)",
		s.NTPSec, s.NTPFrac, s.RTPTimestamp, s.PacketCount, s.OctetCount,
	)
}
