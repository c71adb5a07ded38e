package rtcp

// IPacket is the minimal surface the parser needs from a raw datagram
// buffer. Kept separate from concrete Packet so callers can feed in
// their own buffer wrapper without this package importing theirs.
type IPacket interface {
	GetData() []byte
	SetData([]byte)
	GetSize() int
	Slice(int, int)
}

// ILogger decouples the parser from any particular logging library.
// plogger.PLogger already exposes Debugf/Infof/Warnf/Errorf directly, so
// callers can pass one in without an adapter.
type ILogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
