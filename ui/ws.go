package ui

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mikecv/chaos/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type reply struct {
	Image   string     `json:"image,omitempty"` // base64 PNG
	View    *core.View `json:"view,omitempty"`
	Elapsed string     `json:"elapsed,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// serveWS runs the interactive session: every command read from the socket
// is applied and answered with the new frame, or with the error.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("could not open websocket connection: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var c command
		if err := conn.ReadJSON(&c); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logf("error reading websocket message: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(s.answer(ctx, c)); err != nil {
			s.logf("error sending frame: %v", err)
			return
		}
	}
}

func (s *Server) answer(ctx context.Context, c command) reply {
	if err := s.apply(ctx, c); err != nil {
		s.logf("%s request failed: %v", c.Op, err)
		return reply{Error: err.Error()}
	}
	b, err := s.frame(ctx)
	if err != nil {
		s.logf("frame failed: %v", err)
		return reply{Error: err.Error()}
	}
	v := s.Session.View()
	return reply{
		Image:   string(b),
		View:    &v,
		Elapsed: s.Session.Elapsed().String(),
	}
}
