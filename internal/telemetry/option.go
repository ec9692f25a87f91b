package telemetry

// options holds the configuration for a listener.
type options struct {
	codec  Codec
	logger Logger

	onMessage func(msg Message)
	// onDisconnect is called once per session after teardown. The error is
	// nil for a clean close (peer hangup, explicit Disconnect) and carries
	// the protocol fault otherwise.
	onDisconnect func(err error)

	checksum       Checksum
	sendBufferSize int // size of the outgoing frame channel
}

// Option is a function that configures listener options.
type Option func(*options)

// Default configuration values.
const (
	// defaultSendBufferSize is the default capacity of the outgoing frame
	// channel.
	defaultSendBufferSize = 1
)

// CodecOption returns an Option that sets the payload codec.
// The codec is required and must be provided before creating a listener.
func CodecOption(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// OnMessageOption returns an Option that sets the message callback.
// The callback is required and is invoked synchronously on the read
// pipeline for each received frame, in arrival order. A slow callback
// delays the next frame's read.
func OnMessageOption(cb func(msg Message)) Option {
	return func(o *options) {
		o.onMessage = cb
	}
}

// OnDisconnectOption returns an Option that sets the disconnect callback,
// invoked once per session after the connection is torn down.
func OnDisconnectOption(cb func(err error)) Option {
	return func(o *options) {
		o.onDisconnect = cb
	}
}

// ChecksumOption returns an Option that sets the frame checksum function.
// If not set, CRC-32 (IEEE) over length prefix and payload is used.
func ChecksumOption(sum Checksum) Option {
	return func(o *options) {
		o.checksum = sum
	}
}

// SendBufferSizeOption returns an Option that sets the capacity of the
// outgoing frame channel. A larger buffer allows more frames to be queued
// before Send reports ErrBufferFull.
func SendBufferSizeOption(size int) Option {
	return func(o *options) {
		o.sendBufferSize = size
	}
}

// LoggerOption returns an Option that sets the logger.
// If not set, the default slog logger is used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// checkOptions validates and sets default values for listener options.
func checkOptions(opts *options) error {
	if opts.codec == nil {
		return ErrInvalidCodec
	}

	if opts.onMessage == nil {
		return ErrInvalidOnMessage
	}

	if opts.checksum == nil {
		opts.checksum = crc32Checksum
	}

	if opts.sendBufferSize <= 0 {
		opts.sendBufferSize = defaultSendBufferSize
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	return nil
}
