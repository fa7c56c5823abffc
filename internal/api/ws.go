package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamJobEvents streams a job's progress and detail events over WebSocket
// as JSON messages, closing once the job has finished and everything was sent.
func (s *Server) StreamJobEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.Jobs.Get(id)
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	offset := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		// Read the status first so events appended just before completion are not lost.
		done := job.Done()
		events := job.EventsSince(offset)
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			offset++
		}
		if done && len(events) == 0 {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, job.CurrentStatus()))
			return
		}
	}
}
