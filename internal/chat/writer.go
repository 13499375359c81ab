package chat

import (
	"bufio"
	"net"
	"sync"
	"time"
)

// Outbound is the per-connection write handle. Lines are queued by any
// goroutine and written in order by a single writer goroutine.
type Outbound struct {
	conn net.Conn

	mu         sync.Mutex
	closed     bool
	overflowed bool
	ch         chan string
	done       chan struct{}
}

// StartOutboundWriter starts the writer goroutine for conn. A failed write
// closes conn, which surfaces to the owning Session as a read error.
func StartOutboundWriter(conn net.Conn, buffer int, writeTimeout time.Duration) *Outbound {
	if buffer <= 0 {
		buffer = 256
	}
	o := &Outbound{
		conn: conn,
		ch:   make(chan string, buffer),
		done: make(chan struct{}),
	}
	go func() {
		defer close(o.done)
		w := bufio.NewWriter(conn)
		for msg := range o.ch {
			if writeTimeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			}
			if _, err := w.WriteString(msg + "\n"); err != nil {
				_ = conn.Close()
				return
			}
			if err := w.Flush(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}()
	return o
}

// Send queues line without blocking. On overflow the connection is closed,
// so the owning Session departs; only the first overflow reports
// ErrOutboundFull, later calls get ErrOutboundClosed.
func (o *Outbound) Send(line string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.overflowed {
		return ErrOutboundClosed
	}
	select {
	case o.ch <- line:
		return nil
	default:
		o.overflowed = true
		_ = o.conn.Close()
		return ErrOutboundFull
	}
}

// Close stops accepting lines. Already queued lines are still written.
func (o *Outbound) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}

// Done is closed when the writer goroutine has exited.
func (o *Outbound) Done() <-chan struct{} {
	return o.done
}
