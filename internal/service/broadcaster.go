package service

import "callmood/internal/model"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastCallStatus(event model.StatusEvent)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastCallStatus(model.StatusEvent) {}
