package chat

import (
	"errors"
	"log/slog"
	"time"
)

// Broadcaster fans a line out to every joined user except the sender.
type Broadcaster struct {
	dir    *Directory
	logger *slog.Logger
}

func NewBroadcaster(dir *Directory, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{dir: dir, logger: logger}
}

// Deliver formats body and queues it for every recipient other than sender.
// A failed recipient is logged and skipped; its own Session cleans it up.
// It returns the number of recipients the line was handed to.
func (b *Broadcaster) Deliver(sender Identity, body string, system bool) int {
	kind := "chat"
	if system {
		kind = "system"
	}
	start := time.Now()
	defer func() {
		BroadcastDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	line := b.format(sender, body, system)
	delivered := 0
	for _, r := range b.dir.Recipients(sender) {
		if err := r.Out.Send(line); err != nil {
			DeliveryFailuresTotal.WithLabelValues(failureReason(err)).Inc()
			if errors.Is(err, ErrOutboundFull) {
				b.logger.Warn("delivery failed, dropping slow client", "conn", string(r.ID), "name", r.Name, "error", err)
			} else {
				b.logger.Debug("delivery failed", "conn", string(r.ID), "name", r.Name, "error", err)
			}
			continue
		}
		delivered++
	}
	return delivered
}

func (b *Broadcaster) format(sender Identity, body string, system bool) string {
	if system {
		return systemLine(body)
	}
	name, _ := b.dir.Name(sender)
	return "[" + name + "] " + body
}

func systemLine(body string) string {
	return "* " + body
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrOutboundFull):
		return "full"
	case errors.Is(err, ErrOutboundClosed):
		return "closed"
	default:
		return "other"
	}
}
