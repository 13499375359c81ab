package chat

import (
	"sync"
)

type fakeSender struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (f *fakeSender) Send(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeSender) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}
