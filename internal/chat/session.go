package chat

import (
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// Session drives one connection through handshake, relay and teardown. It is
// the only reader of its connection.
type Session struct {
	ID   Identity
	Conn net.Conn
	Out  *Outbound

	dir          *Directory
	bc           *Broadcaster
	logger       *slog.Logger
	flushTimeout time.Duration

	mu    sync.Mutex
	state State
	name  string
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Name is the display name, empty until the handshake succeeds.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run blocks until the connection is finished.
func (s *Session) Run() {
	defer s.release()

	reader := NewLineReader(s.Conn)

	s.setState(StateAwaitingName)
	if err := s.Out.Send(promptLine); err != nil {
		return
	}

	name, err := reader.ReadLine()
	if err != nil {
		s.logger.Debug("disconnected before naming", "conn", string(s.ID), "error", err)
		return
	}
	if !ValidName(name) {
		RejectedNamesTotal.Inc()
		s.logger.Info("name rejected", "conn", string(s.ID), "error", ErrNameInvalid)
		return
	}

	s.join(name)

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, ErrEndOfStream) {
				s.logger.Debug("read failed", "conn", string(s.ID), "error", err)
			}
			break
		}
		if line == "" {
			continue
		}
		MessagesTotal.WithLabelValues("chat").Inc()
		s.bc.Deliver(s.ID, line, false)
	}

	s.part()
}

func (s *Session) join(name string) {
	s.mu.Lock()
	s.name = name
	s.state = StateJoined
	s.mu.Unlock()

	s.dir.Join(s.ID, name, s.Out, func(roster []string) {
		_ = s.Out.Send(systemLine(rosterPrefix + strings.Join(roster, ", ")))
	})
	s.logger.Info("user joined", "conn", string(s.ID), "name", name)

	MessagesTotal.WithLabelValues("join").Inc()
	s.bc.Deliver(s.ID, name+enteredSuffix, true)
}

// part runs the departure sequence. Remove reports presence, so the part
// notice goes out at most once.
func (s *Session) part() {
	u, ok := s.dir.Remove(s.ID)
	if !ok {
		return
	}
	s.logger.Info("user left", "conn", string(s.ID), "name", u.Name)

	MessagesTotal.WithLabelValues("part").Inc()
	s.bc.Deliver(s.ID, u.Name+leftSuffix, true)
}

// release flushes queued lines for up to flushTimeout and closes the socket.
func (s *Session) release() {
	s.setState(StateClosed)
	s.Out.Close()
	if s.flushTimeout > 0 {
		t := time.NewTimer(s.flushTimeout)
		select {
		case <-s.Out.Done():
		case <-t.C:
		}
		t.Stop()
	}
	_ = s.Conn.Close()
}
