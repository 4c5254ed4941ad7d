package codec2

import "errors"

// Errors returned by the session API. Degenerate frames never produce an
// error: every numerical fallback is handled inside the codec.
var (
	// ErrInvalidMode indicates an unknown coding mode.
	ErrInvalidMode = errors.New("codec2: invalid mode")

	// ErrInvalidLPCOrder indicates a mode configured with an LPC order its
	// LSP quantiser cannot handle.
	ErrInvalidLPCOrder = errors.New("codec2: invalid LPC order")

	// ErrInvalidFrameSize indicates the PCM input length does not match
	// SamplesPerFrame.
	ErrInvalidFrameSize = errors.New("codec2: invalid PCM frame length")

	// ErrInvalidBitsLength indicates the packed frame length does not match
	// BytesPerFrame.
	ErrInvalidBitsLength = errors.New("codec2: invalid bits buffer length")

	// ErrInvalidHeader indicates a .c2 file header with bad magic or an
	// unknown mode byte.
	ErrInvalidHeader = errors.New("codec2: invalid file header")

	// ErrClosed indicates a call on a session after Close.
	ErrClosed = errors.New("codec2: session closed")
)
