package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/internal/worker"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
)

type incoming struct {
	messageType int
	p           []byte
	err         error
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("upgrade: %v", err)
		return
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := worker.NewSession(ctx, s.system, s.opts)
	if err != nil {
		s.logger.Errorf("websocket %s: %v", r.RemoteAddr, err)
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "no calculator available"))
		return
	}
	s.sessions.Add(1)
	s.logger.Infof("websocket %s opened %s", r.RemoteAddr, session.Name)
	defer func() {
		s.sessions.Add(-1)
		if err := session.Close(context.Background()); err != nil {
			s.logger.Warnf("closing %s: %v", session.Name, err)
		}
		s.logger.Infof("websocket %s closed %s", r.RemoteAddr, session.Name)
	}()

	// the read loop is mandatory to notice the client closing the socket
	incomingmsg := make(chan incoming)
	go func() {
		for {
			messageType, p, err := c.ReadMessage()
			select {
			case incomingmsg <- incoming{messageType, p, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	// this goroutine is the only writer of c
	for {
		select {
		case in := <-incomingmsg:
			if in.err != nil {
				if !websocket.IsCloseError(in.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debugf("websocket %s read: %v", r.RemoteAddr, in.err)
				}
				return
			}
			if in.messageType != websocket.TextMessage {
				continue
			}
			if err := session.SendRaw(ctx, in.p); err != nil {
				s.logger.Warnf("websocket %s rejected a message: %v", r.RemoteAddr, err)
				if err := s.write(c, protocol.NewErrorMessage(err)); err != nil {
					return
				}
			}

		case msg := <-session.Responses():
			m, err := protocol.ResponseFromStruct(msg)
			if err != nil {
				s.logger.Errorf("websocket %s: bad calculator response: %v", r.RemoteAddr, err)
				continue
			}
			if err := s.write(c, m); err != nil {
				s.logger.Debugf("websocket %s write: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

func (s *Server) write(c *websocket.Conn, m protocol.Message) error {
	b, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, b)
}
