package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// handleWS upgrades the connection and serves JSON-RPC messages on it. Each
// message is handled in its own goroutine; responses may arrive out of order
// and are matched by ID.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.wsEnabled {
		http.NotFound(w, r)
		return
	}
	if !s.allowRemote(w, r) {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.WSConnections.Inc()
		defer s.metrics.WSConnections.Dec()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMtx sync.Mutex
	write := func(msgType int, data []byte) error {
		writeMtx.Lock()
		defer writeMtx.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteMessage(msgType, data)
	}

	conn.SetReadLimit(maxBodySize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("WebSocket read error")
			}
			cancel()
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		wg.Add(1)
		go func(body []byte) {
			defer wg.Done()
			resp := s.process(ctx, body)
			data, err := json.Marshal(resp)
			if err != nil {
				s.logger.Error().Err(err).Msg("Marshal WebSocket response")
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				s.logger.Debug().Err(err).Msg("WebSocket write error")
			}
		}(msg)
	}
}

// checkOrigin allows non-browser clients, configured CORS origins and
// same-host pages.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := s.originAllowed(origin); ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
