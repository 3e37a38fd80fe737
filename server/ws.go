package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar/driver"
)

const (
	writeWait  = 5 * time.Second
	readLimit  = 1 << 16
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the visualizer is served from anywhere during development
	CheckOrigin: func(*http.Request) bool { return true },
}

// controlMessage is what a websocket client may send.
type controlMessage struct {
	Type string `json:"type"` // step | play | pause
}

// handleWS streams every frame of the current session. The stream ends when
// the search finishes or the session is replaced by /api/init.
func (s *Server) handleWS(c *gin.Context) {
	s.withDriver(c, func(d *driver.Driver) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade", zap.Error(err))
			return
		}
		frames, unsubscribe := d.Subscribe(sendBuffer)
		go s.readPump(ws, d, unsubscribe)
		s.writePump(ws, d, frames)
	})
}

// writePump is the only writer on ws. It pings at 9/10 of the read wait so
// a client that only listens keeps its read deadline moving, and closes the
// stream normally only when the search is over.
func (s *Server) writePump(ws *websocket.Conn, d *driver.Driver, frames <-chan driver.Frame) {
	ticker := time.NewTicker(s.options.ReadWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	write := func(frame driver.Frame) error {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteJSON(newFrameJSON(frame, d.Paused()))
	}
	if err := write(d.Frame()); err != nil {
		return
	}
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				s.closeStream(ws, d)
				return
			}
			if err := write(frame); err != nil {
				s.logger.Debug("websocket write", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debug("websocket ping", zap.Error(err))
				return
			}
		}
	}
}

// closeStream tells the client why its frame stream ended: the search
// finished, or the session went away (replaced, server closing, client gone).
func (s *Server) closeStream(ws *websocket.Conn, d *driver.Driver) {
	code, reason := websocket.CloseGoingAway, "session ended"
	if d.Engine().Status().Done() {
		code, reason = websocket.CloseNormalClosure, "search finished"
	}
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
}

// readPump applies client commands until the connection fails, then
// unsubscribes so writePump ends too.
func (s *Server) readPump(ws *websocket.Conn, d *driver.Driver, unsubscribe func()) {
	defer unsubscribe()
	readWait := s.options.ReadWait
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error { return ws.SetReadDeadline(time.Now().Add(readWait)) })

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readWait))
		var msg controlMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch strings.ToLower(msg.Type) {
		case "step":
			d.StepOnce()
		case "play":
			d.Resume()
		case "pause":
			d.Pause()
		default:
			s.logger.Debug("unknown websocket command", zap.String("type", msg.Type))
		}
	}
}
