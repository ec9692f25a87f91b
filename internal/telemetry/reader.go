package telemetry

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// run drives one tracker session: the frame read pipeline, the outgoing
// frame writer and a closer that unblocks both when the session context is
// cancelled. It returns only after the connection is fully torn down.
func (l *Listener) run(ctx context.Context, conn net.Conn, sendCh chan []byte) {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return l.readLoop(ctx, conn)
	})

	group.Go(func() error {
		return l.writeLoop(ctx, conn, sendCh)
	})

	group.Go(func() error {
		// A blocked ReadFull only returns once the socket is closed, so
		// cancellation (Disconnect, write fault) closes it here.
		<-ctx.Done()
		conn.Close()
		return ctx.Err()
	})

	err := group.Wait()
	l.disconnectIf(conn)

	if isCleanClose(err) {
		l.logger.Info("session ended", "remote_addr", conn.RemoteAddr())
		err = nil
	} else {
		l.logger.Info("session ended", "remote_addr", conn.RemoteAddr(), "error", err)
	}

	if l.opts.onDisconnect != nil {
		l.opts.onDisconnect(err)
	}
}

// isCleanClose reports whether a session ended without a protocol fault:
// explicit Disconnect (context cancelled, socket closed under the reader)
// or the peer hanging up between frames.
func isCleanClose(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF)
}

// readLoop decodes frames until the session ends, delivering each message
// synchronously. The next frame's size read does not start until the
// callback returns, so a slow consumer throttles ingestion.
func (l *Listener) readLoop(ctx context.Context, conn net.Conn) error {
	for {
		msg, err := l.readFrame(ctx, conn)
		if err != nil {
			return err
		}
		l.opts.onMessage(msg)
	}
}

// readFrame drives the four phases of one frame: size, payload, checksum,
// commit. Every phase funnels through readPhase, so at most one read is
// outstanding on the connection and a cancelled session stops advancing at
// the next phase boundary.
func (l *Listener) readFrame(ctx context.Context, conn net.Conn) (Message, error) {
	var size [frameSizeLen]byte
	if err := l.readPhase(ctx, conn, size[:], false); err != nil {
		return nil, err
	}

	payload := make([]byte, binary.BigEndian.Uint16(size[:]))
	if err := l.readPhase(ctx, conn, payload, true); err != nil {
		return nil, err
	}

	var trailer [frameChecksumLen]byte
	if err := l.readPhase(ctx, conn, trailer[:], true); err != nil {
		return nil, err
	}

	// Commit: checksum 0 means verification skipped; any nonzero value
	// must match the checksum over length prefix and payload.
	if declared := binary.BigEndian.Uint32(trailer[:]); declared != 0 {
		if computed := l.opts.checksum(size[:], payload); computed != declared {
			return nil, errors.Wrapf(ErrChecksumMismatch, "declared %#08x, computed %#08x", declared, computed)
		}
	}

	msg, err := l.opts.codec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return msg, nil
}

// readPhase reads exactly len(buf) bytes, the single read of one pipeline
// phase. A short read (peer half-close mid-frame) surfaces as
// io.ErrUnexpectedEOF and terminates the session like any other fault.
// ReadFull reports plain io.EOF when the peer hangs up exactly on a phase
// boundary; past the size phase that is still a truncated frame, so
// midFrame phases map it to io.ErrUnexpectedEOF. Only an EOF before the
// first size byte is a clean close.
func (l *Listener) readPhase(ctx context.Context, conn net.Conn, buf []byte, midFrame bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.ReadFull(conn, buf)
	if midFrame && errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// writeLoop sends queued frames until the session ends.
func (l *Listener) writeLoop(ctx context.Context, conn net.Conn, sendCh chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-sendCh:
			if _, err := conn.Write(frame); err != nil {
				return errors.Wrap(err, "write frame")
			}
		}
	}
}
