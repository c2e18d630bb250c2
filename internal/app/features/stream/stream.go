// internal/app/features/stream/stream.go
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
)

// heartbeatInterval keeps idle connections alive through proxies that
// time out silent streams.
const heartbeatInterval = 25 * time.Second

// ServeStream handles GET /stream?orgId=…. Each event is one SSE frame:
//
//	event: task.moved
//	data: {"room":"org:…","name":"task.moved","payload":{…}}
//
// Comment frames (": ping") are heartbeats and carry no event.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	gc, ok := guard.FromRequest(r)
	if !ok {
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.Hub.Subscribe(
		realtime.OrgRoom(gc.OrgID),
		realtime.UserRoom(gc.CallerID),
	)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	h.Log.Debug("stream opened",
		zap.String("org_id", gc.OrgID),
		zap.String("user_id", gc.CallerID))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.Log.Error("stream event encode", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}
