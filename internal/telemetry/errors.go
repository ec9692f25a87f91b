package telemetry

import "errors"

// Errors returned by listener operations.
var (
	// ErrInvalidCodec is returned when no codec is provided.
	ErrInvalidCodec = errors.New("invalid codec")
	// ErrInvalidOnMessage is returned when no message callback is provided.
	ErrInvalidOnMessage = errors.New("invalid on message callback")
	// ErrAlreadyActive is returned by StartListening when the listener is
	// already listening or already has a connection.
	ErrAlreadyActive = errors.New("listener already active")
	// ErrNotConnected is returned when sending without an established
	// connection.
	ErrNotConnected = errors.New("no tracker connected")
	// ErrPayloadTooLarge is returned when a payload exceeds the 16-bit
	// length prefix.
	ErrPayloadTooLarge = errors.New("payload exceeds frame capacity")
)

// ErrBufferFull is returned when the send buffer cannot accept another
// frame. The write loop is not draining fast enough; callers decide whether
// to drop or retry.
var ErrBufferFull = errors.New("send buffer full")

// In-stream protocol faults. These are never returned to callers directly;
// they terminate the session and reach the application only through the
// disconnect callback, wrapped with context.
var (
	// ErrChecksumMismatch indicates a nonzero frame checksum that did not
	// validate against the received length and payload.
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
	// ErrDecodeFailure indicates the codec rejected a frame payload.
	ErrDecodeFailure = errors.New("payload decode failure")
)
