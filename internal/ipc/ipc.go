// Package ipc carries control commands from deskvox-ctl to the running
// daemon over a unix socket, one JSON request and one JSON reply per
// connection.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"deskvox/internal/intent"
	"deskvox/internal/session"
)

const ioTimeout = 5 * time.Second

type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

type ControlReply struct {
	OK      bool              `json:"ok"`
	Message string            `json:"message,omitempty"`
	Status  *session.Snapshot `json:"status,omitempty"`
	History []string          `json:"history,omitempty"`
	Phrases []intent.Phrase   `json:"phrases,omitempty"`
}

type Handler func(ctx context.Context, msg ControlMessage) ControlReply

type Server struct {
	path    string
	ln      net.Listener
	handler Handler
	log     *slog.Logger

	wg sync.WaitGroup
}

// Listen binds the control socket, replacing a stale one left by a previous
// run.
func Listen(path string, handler Handler, log *slog.Logger) (*Server, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Server{path: path, ln: ln, handler: handler, log: log}, nil
}

// Serve accepts connections until Close. Handlers get ctx, which outlives
// the connection so accepted work may continue after the reply.
func (s *Server) Serve(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("Accept failed", "err", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) Close() error {
	err := s.ln.Close()
	s.wg.Wait()
	os.Remove(s.path)
	return err
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		s.log.Warn("Bad control message", "err", err)
		return
	}

	s.log.Debug("Control command", "cmd", msg.Cmd, "text", msg.Text)
	reply := s.handler(ctx, msg)

	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		s.log.Warn("Failed to send reply", "cmd", msg.Cmd, "err", err)
	}
}

// SendCommand delivers msg to the daemon listening on path and returns its
// reply.
func SendCommand(ctx context.Context, path string, msg ControlMessage) (ControlReply, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return ControlReply{}, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return ControlReply{}, fmt.Errorf("send: %w", err)
	}

	var reply ControlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return ControlReply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
