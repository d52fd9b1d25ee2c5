package telemetry

import "testing"

func TestHelpersSafeBeforeInit(t *testing.T) {
	// Package tests elsewhere increment metrics without calling Init;
	// the helpers must tolerate that.
	IncConnect()
	IncDisconnect()
	IncReconnect()
	IncChatLine()
	IncEvent("message")
	IncCommand()
	IncCommandDropped()
	SetCommandQueueDepth(3)
}

func TestInitIdempotent(t *testing.T) {
	Init()
	Init() // second call must not re-register

	if ConnectsTotal == nil || EventsTotal == nil || CommandQueueDepth == nil {
		t.Fatal("Init did not register metrics")
	}

	IncConnect()
	IncEvent("action")
	SetCommandQueueDepth(1)
}
