package uvgrtp

// RTPContext is the external collaborator owning the RTP data path: the
// core only needs its SSRC/clock-rate accessors and the ability to
// assign a freshly generated SSRC after a self-collision.
type RTPContext interface {
	GetSSRC() uint32
	GetClockRate() uint32
	SetSSRC(ssrc uint32)
}

// RTPFrame is the minimal view of a received RTP packet the Estimator
// needs: sequence number, timestamp, and payload length. The RTP data
// path itself belongs to the caller; this is only the boundary shape.
type RTPFrame struct {
	SSRC        uint32
	SeqNumber   uint16
	Timestamp   uint32
	PayloadLen  int
}

// PacketHandlerStatus mirrors the handler(ctx, flags, &frame) shape used
// throughout the transport layer: a handler that does not recognize the
// frame returns ErrPacketNotHandled so downstream handlers may process
// it further.
type PacketHandlerStatus error
