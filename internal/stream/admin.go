package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tailscale.com/tsweb"

	"github.com/banshee-data/beacon.scope/internal/beacon"
)

type replyLine struct {
	Method string `json:"method"`
	beacon.Reply
}

// AttachAdminRoutes registers debugging endpoints under /debug/ on mux. tsweb
// restricts them to loopback and tailnet callers.
func (s *Session) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("session", "Beacon session status (JSON)", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s.Status()); err != nil {
			http.Error(w, "Failed to encode status", http.StatusInternalServerError)
		}
	})

	debug.HandleSilentFunc("reconnect", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		url := strings.TrimSpace(r.FormValue("url"))
		if url == "" {
			url = s.URL()
		}
		if url == "" {
			http.Error(w, "Missing url", http.StatusBadRequest)
			return
		}
		if err := s.Connect(r.Context(), url); err != nil {
			http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusBadGateway)
			return
		}
		io.WriteString(w, fmt.Sprintf("Connected to %s", url))
	})

	debug.HandleSilentFunc("disconnect", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Disconnect()
		io.WriteString(w, "Disconnected")
	})

	debug.HandleSilentFunc("send-request", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		method := strings.TrimSpace(r.FormValue("method"))
		if method == "" {
			http.Error(w, "Missing method", http.StatusBadRequest)
			return
		}
		if err := s.Request(method); err != nil {
			http.Error(w, "Failed to send request", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, fmt.Sprintf("Sent request %q", method))
	})

	// Server-Sent Events stream of inbound frames and request replies. A
	// slow client misses frames rather than stalling the session.
	debug.HandleSilentFunc("tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		sub := s.SubscribeLossy(TopicRaw, TopicState, TopicReply)
		defer sub.Unsubscribe()

		w.Write([]byte(": ping\n\n"))
		flusher.Flush()

		for {
			select {
			case ev := <-sub.C():
				var line string
				switch ev.Topic {
				case TopicRaw:
					line = fmt.Sprintf("data: %s\n\n", ev.Raw)
				case TopicState:
					line = fmt.Sprintf("event: state\ndata: %s\n\n", ev.State)
				case TopicReply:
					b, err := json.Marshal(replyLine{Method: ev.Method, Reply: ev.Reply})
					if err != nil {
						continue
					}
					line = fmt.Sprintf("event: reply\ndata: %s\n\n", b)
				}
				if _, err := io.WriteString(w, line); err != nil {
					return
				}
				flusher.Flush()
			case <-sub.Done():
				return
			case <-r.Context().Done():
				return
			}
		}
	})
}
