package chat

import (
	"bufio"
	"errors"
	"net"
	"testing"
	"time"
)

func TestOutbound_WritesLinesInOrder(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	out := StartOutboundWriter(server, 8, 0)
	for _, l := range []string{"one", "two", "three"} {
		if err := out.Send(l); err != nil {
			t.Fatalf("send %q: %v", l, err)
		}
	}

	r := bufio.NewReader(client)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"one\n", "two\n", "three\n"} {
		got, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}

	out.Close()
	select {
	case <-out.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not exit after Close")
	}
}

func TestOutbound_SendAfterClose(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	out := StartOutboundWriter(server, 1, 0)
	out.Close()
	out.Close()
	if err := out.Send("late"); !errors.Is(err, ErrOutboundClosed) {
		t.Fatalf("expected ErrOutboundClosed, got %v", err)
	}
}

func TestOutbound_FullQueueDoesNotBlock(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	// Nobody reads client, so the writer stalls on its first line.
	out := StartOutboundWriter(server, 1, 0)
	sawFull := false
	for i := 0; i < 10; i++ {
		if err := out.Send("x"); errors.Is(err, ErrOutboundFull) {
			sawFull = true
			break
		}
	}
	if !sawFull {
		t.Fatal("expected ErrOutboundFull from a stalled writer")
	}
	if err := out.Send("x"); !errors.Is(err, ErrOutboundClosed) {
		t.Fatalf("send after overflow = %v, want ErrOutboundClosed", err)
	}
	select {
	case <-out.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not exit after overflow closed the conn")
	}
	if _, err := server.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected conn to be closed after overflow")
	}
}

func TestOutbound_WriteFailureClosesConn(t *testing.T) {
	server, client := net.Pipe()
	client.Close()

	out := StartOutboundWriter(server, 4, 0)
	_ = out.Send("into the void")

	select {
	case <-out.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not exit after write failure")
	}
	if _, err := server.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected conn to be closed after write failure")
	}
}
