// Package telemetry implements the TCP transport between QCTracker and the
// in-vehicle tracking unit. A Listener accepts a single incoming connection
// and continuously decodes length-prefixed, checksum-guarded frames,
// handing each decoded message to the application's callback. Any protocol
// violation (short read, checksum mismatch, decode failure) tears the
// connection down silently; the application observes it only through
// IsConnected and the optional disconnect callback, and reconnects by
// listening again.
package telemetry

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// DefaultPort is the well-known telemetry port. The library itself passes
// port 0 through to the OS (ephemeral bind); callers that want the
// conventional port use this constant.
const DefaultPort = 5512

// state is the listener lifecycle state. Exactly one connection attempt or
// one established connection exists at a time; faults and Disconnect both
// return the listener to stateIdle, from where it is reusable.
type state int

const (
	stateIdle state = iota
	stateListening
	stateMessaging
)

// Listener owns the listening endpoint and the single active tracker
// connection. It is safe for concurrent use; lifecycle operations may be
// called from any goroutine, including while a read is in flight.
type Listener struct {
	port   int
	opts   options
	logger Logger

	mu     sync.Mutex
	state  state
	ln     net.Listener
	conn   net.Conn
	sendCh chan []byte
	cancel context.CancelFunc
}

// NewListener creates a listener bound later to the given TCP port.
// Port 0 lets the OS pick; no socket is opened until StartListening.
// Returns an error if required options (codec, message callback) are
// missing.
func NewListener(port int, opt ...Option) (*Listener, error) {
	var opts options
	for _, o := range opt {
		o(&opts)
	}

	if err := checkOptions(&opts); err != nil {
		return nil, err
	}

	return &Listener{
		port:   port,
		opts:   opts,
		logger: opts.logger,
	}, nil
}

// StartListening binds the telemetry port and begins accepting one
// incoming connection. The outcome is reported exactly once through
// onResult: true after a connection is accepted and the read pipeline has
// started, false when the accept fails or is cancelled.
//
// Returns ErrAlreadyActive without touching the socket if the listener is
// already listening or connected. If the bind itself fails, the endpoint
// is released, onResult(false) is invoked and the error is returned;
// retrying is the caller's decision.
func (l *Listener) StartListening(onResult func(ok bool)) error {
	if onResult == nil {
		onResult = func(bool) {}
	}

	l.mu.Lock()
	if l.state != stateIdle {
		l.mu.Unlock()
		return ErrAlreadyActive
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		l.mu.Unlock()
		onResult(false)
		return errors.Wrapf(err, "bind telemetry port %d", l.port)
	}

	l.ln = ln
	l.state = stateListening
	l.mu.Unlock()

	l.logger.Info("listening for tracker", "addr", ln.Addr())
	go l.acceptOne(ln, onResult)
	return nil
}

// acceptOne waits for a single connection, then closes the listening
// socket: only one tracker session exists at a time.
func (l *Listener) acceptOne(ln net.Listener, onResult func(ok bool)) {
	conn, err := ln.Accept()
	ln.Close()

	l.mu.Lock()
	// CancelListening clears l.ln, and a later StartListening may already
	// have installed a fresh socket; only the owner of the current attempt
	// may touch lifecycle state.
	owner := l.ln == ln
	if owner {
		l.ln = nil
	}
	if err != nil || !owner {
		// Accept fault, or CancelListening won the race.
		if owner && l.state == stateListening {
			l.state = stateIdle
		}
		l.mu.Unlock()

		if conn != nil {
			conn.Close()
		}
		if err != nil {
			l.logger.Debug("accept ended", "error", err)
		}
		onResult(false)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.conn = conn
	l.cancel = cancel
	l.sendCh = make(chan []byte, l.opts.sendBufferSize)
	l.state = stateMessaging
	sendCh := l.sendCh
	l.mu.Unlock()

	l.logger.Info("tracker connected", "remote_addr", conn.RemoteAddr())
	go l.run(ctx, conn, sendCh)
	onResult(true)
}

// CancelListening stops a pending accept. Idempotent; calling it when the
// listener is idle or connected is a no-op.
func (l *Listener) CancelListening() {
	l.mu.Lock()
	if l.state != stateListening {
		l.mu.Unlock()
		return
	}
	l.state = stateIdle
	ln := l.ln
	l.ln = nil
	l.mu.Unlock()

	if ln != nil {
		// Unblocks the pending Accept; acceptOne reports false.
		ln.Close()
	}
}

// Disconnect releases the current connection, if any. Idempotent; the
// read pipeline observes the closed connection at its next phase boundary
// and stops. Calling Disconnect with no connection is a no-op.
func (l *Listener) Disconnect() {
	l.disconnectIf(nil)
}

// disconnectIf tears the session down when conn is nil (explicit
// Disconnect) or still the current connection. A finished session's
// teardown runs after its read loop drains and must not touch a newer
// session established in the meantime.
func (l *Listener) disconnectIf(conn net.Conn) {
	l.mu.Lock()
	if l.state != stateMessaging || (conn != nil && l.conn != conn) {
		l.mu.Unlock()
		return
	}
	l.state = stateIdle
	current := l.conn
	cancel := l.cancel
	l.conn = nil
	l.cancel = nil
	l.sendCh = nil
	l.mu.Unlock()

	cancel()
	current.Close()
}

// IsConnected reports whether a tracker connection is established.
func (l *Listener) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateMessaging
}

// IsListening reports whether an accept is pending.
func (l *Listener) IsListening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateListening
}

// Addr returns the bound listening address while an accept is pending,
// nil otherwise. Useful with port 0.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Send encodes a message, frames it and queues it for the write loop
// without blocking. Returns ErrNotConnected when no session is active and
// ErrBufferFull when the outgoing channel is full.
func (l *Listener) Send(msg Message) error {
	l.mu.Lock()
	sendCh := l.sendCh
	active := l.state == stateMessaging
	l.mu.Unlock()

	if !active {
		return ErrNotConnected
	}

	payload, err := l.opts.codec.Encode(msg)
	if err != nil {
		return errors.Wrap(err, "encode message")
	}

	frame, err := appendFrame(make([]byte, 0, frameSizeLen+len(payload)+frameChecksumLen), payload, l.opts.checksum)
	if err != nil {
		return err
	}

	select {
	case sendCh <- frame:
		return nil
	default:
		return ErrBufferFull
	}
}
