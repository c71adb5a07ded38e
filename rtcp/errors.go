package rtcp

import "errors"

// Structural codec errors, per RFC 3550 compound packet validation.
var (
	ErrInvalidHeader      = errors.New("rtcp: invalid header")
	ErrTruncated          = errors.New("rtcp: truncated packet")
	ErrUnsupportedType    = errors.New("rtcp: unsupported packet type")
	ErrPaddingUnsupported = errors.New("rtcp: padded packets are not accepted")
)
