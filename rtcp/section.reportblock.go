package rtcp

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// reportBlockSize is the fixed wire size of one report block, RFC 3550
// §6.4.1.
const reportBlockSize = 24

/*
ReportBlock carries one source's reception quality as seen by the
reporter, RFC 3550 §6.4.1:

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                 SSRC_1 (SSRC of first source)                 |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	| fraction lost |       cumulative number of packets lost       |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|           extended highest sequence number received           |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                      interarrival jitter                      |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                         last SR (LSR)                         |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                   delay since last SR (DLSR)                  |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+

TotalLost is a 24-bit field on the wire; Parse/Bytes mask it down to
three bytes rather than the full four.
*/
type ReportBlock struct {
	SSRC         uint32
	FractionLost uint8
	TotalLost    uint32
	HighestSeq   uint32
	Jitter       uint32
	LSR          uint32
	DLSR         uint32
}

func NewReportBlock() *ReportBlock {
	return &ReportBlock{}
}

func (r *ReportBlock) Parse(data []byte) error {
	if len(data) < reportBlockSize {
		return fmt.Errorf("%w: report block needs %d bytes, got %d", ErrTruncated, reportBlockSize, len(data))
	}

	r.SSRC = binary.BigEndian.Uint32(data[0:4])
	r.FractionLost = data[4]
	r.TotalLost = uint32(data[5])<<16 | uint32(data[6])<<8 | uint32(data[7])
	r.HighestSeq = binary.BigEndian.Uint32(data[8:12])
	r.Jitter = binary.BigEndian.Uint32(data[12:16])
	r.LSR = binary.BigEndian.Uint32(data[16:20])
	r.DLSR = binary.BigEndian.Uint32(data[20:24])
	return nil
}

func (r *ReportBlock) GetSize() int {
	return reportBlockSize
}

func (r *ReportBlock) Bytes() []byte {
	var buf [reportBlockSize]byte

	binary.BigEndian.PutUint32(buf[0:4], r.SSRC)
	buf[4] = r.FractionLost
	buf[5] = byte(r.TotalLost >> 16)
	buf[6] = byte(r.TotalLost >> 8)
	buf[7] = byte(r.TotalLost)
	binary.BigEndian.PutUint32(buf[8:12], r.HighestSeq)
	binary.BigEndian.PutUint32(buf[12:16], r.Jitter)
	binary.BigEndian.PutUint32(buf[16:20], r.LSR)
	binary.BigEndian.PutUint32(buf[20:24], r.DLSR)
	return buf[:]
}

func (r *ReportBlock) String() string {
	return fmt.Sprintf(
		"RB(ssrc=%d fl=%d tl=%d hs=%d jit=%d lsr=%d dlsr=%d)",
		r.SSRC, r.FractionLost, r.TotalLost, r.HighestSeq, r.Jitter, r.LSR, r.DLSR,
	)
}

type ReportBlocks []ReportBlock

func (l ReportBlocks) Bytes() []byte {
	result := make([]byte, 0, len(l)*reportBlockSize)
	for i := range l {
		result = append(result, l[i].Bytes()...)
	}
	return result
}

// Words returns how many 32-bit words the encoded list occupies, for
// callers filling in an RTCP header's length field.
func (l ReportBlocks) Words() int {
	return len(l) * reportBlockSize / 4
}

func (l ReportBlocks) String() string {
	parts := make([]string, 0, len(l))
	for _, rb := range l {
		parts = append(parts, rb.String())
	}
	return "RBS=[" + strings.Join(parts, ", ") + "]"
}
