package ws

import (
	"context"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type Server struct {
	Hub *Hub
}

func NewServer(hub *Hub) *Server {
	return &Server{Hub: hub}
}

// Handler upgrades the connection and writes every published stat update
// until the client goes away.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "server error")

		sessionID, updates := s.Hub.Subscribe()
		defer s.Hub.Unsubscribe(sessionID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Drain (and ignore) client frames so pings are answered and a
		// closed peer cancels the context.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			case update, ok := <-updates:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "bye")
					return
				}
				if err := wsjson.Write(ctx, conn, update); err != nil {
					return
				}
			}
		}
	}
}
