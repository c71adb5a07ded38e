package rtcp

/*
  PT=packet types (RTCP header)
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|V=2|P|    RC   |        PT     |             length            |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

@see https://tools.ietf.org/html/rfc3550#section-12.1

Only SR/RR/SDES/BYE/APP are accepted by this codec: RTCP extensions
(RTPFB/PSFB, feedback profile RTP/AVPF, XR) are out of scope.
*/
const (
	PT_SR uint8 = 200 + iota
	PT_RR
	PT_SDES
	PT_BYE
	PT_APP
)

const (
	PTMin = PT_SR
	PTMax = PT_APP
)

/*
@see https://tools.ietf.org/html/rfc3550#section-6.5
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|    CNAME=1    |     length    | user and domain name        ...
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/
const (
	SDES_NULL int = iota
	SDES_CNAME
	SDES_NAME
	SDES_EMAIL
	SDES_PHONE
	SDES_LOC
	SDES_TOOL
	SDES_NOTE
	SDES_PRIV
)
