package api

import (
	"net/http"
)

// handleEvents streams document lifecycle events to the client as SSE.
// The handler runs behind the net/http adaptor because streaming needs
// the http.Flusher interface.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := s.config.Broker.Subscribe(r.Context())

	for {
		select {
		case <-r.Context().Done():
			return
		case encoded, ok := <-events:
			if !ok {
				return
			}
			if _, err := w.Write(encoded); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
