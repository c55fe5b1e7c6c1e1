package channel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// defaultMaxLine bounds a TCP request line when the config leaves it unset.
const defaultMaxLine = 4096

// ListenAndServe listens on the configured TCP address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.chCfg.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.chCfg.Address(), err)
	}
	s.logger.Info("command channel listening", "address", ln.Addr().String())
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. Each connection
// gets a reader and a writer goroutine. Serve closes ln and waits for
// connection goroutines before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	conns := make(map[net.Conn]struct{})
	var mu sync.Mutex

	go func() {
		<-ctx.Done()
		ln.Close() //nolint:errcheck // unblocks Accept
		mu.Lock()
		for conn := range conns {
			conn.Close() //nolint:errcheck // unblocks readers
		}
		mu.Unlock()
	}()

	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		mu.Lock()
		if ctx.Err() != nil {
			mu.Unlock()
			conn.Close() //nolint:errcheck // shutting down
			return nil
		}
		conns[conn] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(conn)
			mu.Lock()
			delete(conns, conn)
			mu.Unlock()
		}()
	}
}

// serveConn runs one TCP client until it disconnects.
func (s *Server) serveConn(conn net.Conn) {
	client := NewClient(s.chCfg.Actor, conn.RemoteAddr().String(), s.chCfg.SendBuffer, conn)
	s.hub.Register(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(conn, client)
	}()

	err := s.readLoop(conn, client)
	if err != nil {
		s.logger.Warn("tcp client read error", "remote", client.remote, "error", err)
	}

	s.hub.Unregister(client)
	<-done
	conn.Close() //nolint:errcheck // already finished with the connection
}

// readLoop feeds newline-delimited requests to Handle. A line longer than
// the configured limit is discarded up to its newline and answered with an
// error reply; the connection stays open.
func (s *Server) readLoop(conn net.Conn, client *Client) error {
	maxLine := s.chCfg.MaxLineLength
	if maxLine <= 0 {
		maxLine = defaultMaxLine
	}

	// Room for the line plus "\r\n".
	r := bufio.NewReaderSize(conn, maxLine+2)
	for {
		line, err := r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			err = discardLine(r)
			s.rejectLongLine(client)
			if err != nil {
				return readErr(err)
			}
			continue
		}

		line = bytes.TrimSuffix(bytes.TrimSuffix(line, []byte("\n")), []byte("\r"))
		switch {
		case len(line) > maxLine:
			s.rejectLongLine(client)
		case len(line) > 0 || err == nil:
			s.Handle(client, string(line), IsText(line))
		}

		if err != nil {
			return readErr(err)
		}
	}
}

func (s *Server) rejectLongLine(client *Client) {
	s.logger.Warn("tcp request rejected", "remote", client.remote, "error", ErrLineTooLong)
	s.hub.Send(client, ReplyUnknownCommand)
}

// discardLine consumes the rest of an over-long line, including its newline.
func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// writeLoop drains the client's queue until it is closed. A write failure
// closes the connection so the reader stops too.
func (s *Server) writeLoop(conn net.Conn, client *Client) {
	w := bufio.NewWriter(conn)
	for msg := range client.send {
		_, err := w.WriteString(msg + "\n")
		if err == nil {
			err = w.Flush()
		}
		if err != nil {
			s.logger.Debug("tcp write failed", "remote", client.remote, "error", err)
			conn.Close() //nolint:errcheck // stops the reader
			for range client.send {
				// discard until the hub closes the queue
			}
			return
		}
	}
}
