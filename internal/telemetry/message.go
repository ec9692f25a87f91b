package telemetry

// Message is a decoded telemetry message produced by a Codec.
// The transport treats it as opaque and hands it to the message callback
// without inspecting it.
type Message any

// Codec converts between raw frame payloads and domain messages.
// The transport owns the framing (length prefix and checksum trailer);
// the codec owns the payload semantics. Applications implement this
// interface for their own telemetry message format.
type Codec interface {
	// Decode turns one complete frame payload into a domain message.
	// The payload contains exactly the bytes declared by the frame's
	// length prefix; it may be empty.
	Decode(payload []byte) (Message, error)
	// Encode turns a domain message into a frame payload for sending.
	Encode(msg Message) ([]byte, error)
}
