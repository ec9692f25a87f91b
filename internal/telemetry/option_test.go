package telemetry

import (
	"errors"
	"log/slog"
	"testing"
)

func TestCodecOption(t *testing.T) {
	codec := rawCodec{}
	var opts options
	CodecOption(codec)(&opts)

	if opts.codec != codec {
		t.Error("codec not set correctly")
	}
}

func TestOnMessageOption(t *testing.T) {
	var opts options
	OnMessageOption(func(Message) {})(&opts)

	if opts.onMessage == nil {
		t.Error("onMessage not set")
	}
}

func TestOnDisconnectOption(t *testing.T) {
	var opts options
	OnDisconnectOption(func(error) {})(&opts)

	if opts.onDisconnect == nil {
		t.Error("onDisconnect not set")
	}
}

func TestChecksumOption(t *testing.T) {
	var opts options
	ChecksumOption(func(size, payload []byte) uint32 { return 7 })(&opts)

	if opts.checksum == nil {
		t.Fatal("checksum not set")
	}
	if got := opts.checksum(nil, nil); got != 7 {
		t.Errorf("checksum = %d, want 7", got)
	}
}

func TestSendBufferSizeOption(t *testing.T) {
	var opts options
	SendBufferSizeOption(100)(&opts)

	if opts.sendBufferSize != 100 {
		t.Errorf("sendBufferSize = %d, want 100", opts.sendBufferSize)
	}
}

func TestLoggerOption(t *testing.T) {
	logger := slog.Default()
	var opts options
	LoggerOption(logger)(&opts)

	if opts.logger != Logger(logger) {
		t.Error("logger not set correctly")
	}
}

func TestCheckOptions_Defaults(t *testing.T) {
	opts := options{
		codec:     rawCodec{},
		onMessage: func(Message) {},
	}

	if err := checkOptions(&opts); err != nil {
		t.Fatalf("checkOptions failed: %v", err)
	}
	if opts.checksum == nil {
		t.Error("default checksum not applied")
	}
	if opts.sendBufferSize != defaultSendBufferSize {
		t.Errorf("sendBufferSize = %d, want %d", opts.sendBufferSize, defaultSendBufferSize)
	}
	if opts.logger == nil {
		t.Error("default logger not applied")
	}
}

func TestCheckOptions_Required(t *testing.T) {
	opts := options{onMessage: func(Message) {}}
	if err := checkOptions(&opts); !errors.Is(err, ErrInvalidCodec) {
		t.Errorf("err = %v, want ErrInvalidCodec", err)
	}

	opts = options{codec: rawCodec{}}
	if err := checkOptions(&opts); !errors.Is(err, ErrInvalidOnMessage) {
		t.Errorf("err = %v, want ErrInvalidOnMessage", err)
	}
}
