package chat

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Options tunes per-connection behaviour.
type Options struct {
	OutBuffer    int
	WriteTimeout time.Duration
	FlushTimeout time.Duration
}

type Server struct {
	addr   string
	opts   Options
	logger *slog.Logger
	dir    *Directory
	bc     *Broadcaster

	mu       sync.Mutex
	listener net.Listener
	conns    map[Identity]net.Conn
	closed   bool
	wg       sync.WaitGroup
}

func NewServer(addr string, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.OutBuffer <= 0 {
		opts.OutBuffer = 256
	}
	dir := NewDirectory()
	return &Server{
		addr:   addr,
		opts:   opts,
		logger: logger,
		dir:    dir,
		bc:     NewBroadcaster(dir, logger),
		conns:  make(map[Identity]net.Conn),
	}
}

// Directory exposes the server's registry of joined users.
func (s *Server) Directory() *Directory {
	return s.dir
}

// Start binds the configured address and serves it in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.acceptLoop(ln)
	}()

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Serve runs the accept loop on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.listener = ln
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	s.acceptLoop(ln)
	return ErrServerClosed
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every open connection, then waits for all
// sessions to finish.
func (s *Server) Stop() {
	s.logger.Info("shutting down")

	s.mu.Lock()
	s.closed = true
	if s.listener != nil {
		s.listener.Close()
	}
	for _, c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.isClosed() {
				return
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			s.logger.Warn("accept failed", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		ConnectionsTotal.Inc()
		id := NewIdentity()
		s.logger.Info("client connected", "conn", string(id), "remote", conn.RemoteAddr().String())

		if !s.track(id, conn) {
			conn.Close()
			return
		}
		sess := &Session{
			ID:           id,
			Conn:         conn,
			Out:          StartOutboundWriter(conn, s.opts.OutBuffer, s.opts.WriteTimeout),
			dir:          s.dir,
			bc:           s.bc,
			logger:       s.logger,
			flushTimeout: s.opts.FlushTimeout,
		}
		go func() {
			defer s.untrack(id)
			sess.Run()
		}()
	}
}

func (s *Server) track(id Identity, conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[id] = conn
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(id Identity) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
