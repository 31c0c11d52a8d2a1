package api

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHubRunExitsOnCloseAll(t *testing.T) {
	hub := NewHub(zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	hub.CloseAll()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub loop still running after CloseAll")
	}
}

func TestHubCloseAllIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	hub.CloseAll()
	hub.CloseAll()

	if n := hub.ClientCount(); n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
}
