// internal/app/features/stream/handler.go

// Package stream serves the live event feed over SSE. A connection
// joins the caller's organization room and personal room; every event
// published to either is written as one SSE frame.
package stream

import (
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
)

// Handler serves GET /stream.
type Handler struct {
	Log   *zap.Logger
	Guard *guard.Guard
	Hub   *realtime.Hub
}

func NewHandler(logger *zap.Logger, g *guard.Guard, hub *realtime.Hub) *Handler {
	return &Handler{Log: logger, Guard: g, Hub: hub}
}
