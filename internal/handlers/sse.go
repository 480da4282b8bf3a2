package handlers

import (
	"fmt"
	"net/http"
)

// HandleEvents streams phase-change and harvest events over Server-Sent
// Events. The stream is a latency optimization on top of polling, not a
// replacement: a client that never connects here still converges through
// the polling endpoints.
func (ctx *Context) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, user, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies
	flusher.Flush()

	clientChan := ctx.Events.Subscribe(instance)
	defer ctx.Events.Unsubscribe(instance, clientChan)
	ctx.Logger.Printf("events: client %s connected, instance=%s now has %d clients",
		user, instance, ctx.Events.ClientCount(instance))

	reqCtx := r.Context()
	for {
		select {
		case <-reqCtx.Done():
			ctx.Logger.Printf("events: client %s disconnected", user)
			return
		case ev := <-clientChan:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
