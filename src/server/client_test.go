package server

import (
	"testing"
	"time"
)

func TestDeliverDropsOldestWhenQueueFull(t *testing.T) {
	s := newSession("s1", nil, nil, 2)

	s.Deliver("first")
	s.Deliver("second")

	// A full queue must never block the caller.
	done := make(chan struct{})
	go func() {
		s.Deliver("third")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Deliver blocked on a full queue")
	}

	if got := <-s.send; got != "second" {
		t.Errorf("Expected oldest entry dropped, first queued is %v", got)
	}
	if got := <-s.send; got != "third" {
		t.Errorf("Expected newest entry kept, got %v", got)
	}
	select {
	case extra := <-s.send:
		t.Errorf("Unexpected extra queued entry: %v", extra)
	default:
	}
}

func TestDeliverKeepsOrderWhenQueueHasRoom(t *testing.T) {
	s := newSession("s1", nil, nil, 4)

	s.Deliver("a")
	s.Deliver("b")

	if got := <-s.send; got != "a" {
		t.Errorf("Expected a, got %v", got)
	}
	if got := <-s.send; got != "b" {
		t.Errorf("Expected b, got %v", got)
	}
}
