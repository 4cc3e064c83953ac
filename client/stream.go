package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"storefront/models"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// StreamURL derives the WebSocket endpoint from an http(s) base URL.
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Connect opens the real-time stream and applies events in the background
// until ctx is cancelled or the connection drops. When the server cannot be
// reached the session switches to offline mode, loading the catalog from the
// local cache or the seed list, and the dial error is returned.
func (s *Session) Connect(ctx context.Context) error {
	wsURL, err := StreamURL(s.api.BaseURL())
	if err != nil {
		return err
	}

	conn, _, err := s.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		log.WithError(err).WithField("url", wsURL).Warn("Real-time connection failed")
		s.loadOffline()
		s.notify(NoticeWarning, "Server connection failed - Running in offline mode")
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}

	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = conn
	s.online = true
	s.mu.Unlock()
	s.notify(NoticeSuccess, "Connected to server - Real-time updates enabled!")

	done := make(chan struct{})
	go closeOnCancel(ctx, conn, done)
	go s.readStream(conn, done)
	return nil
}

// closeOnCancel closes c when ctx ends, and returns early once done closes.
func closeOnCancel(ctx context.Context, c io.Closer, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		_ = c.Close()
	case <-done:
	}
}

// Close disconnects the stream.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.online = false
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}

// readStream applies events until the connection drops, then closes done.
func (s *Session) readStream(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		current := s.conn == conn
		if current {
			s.conn = nil
			s.online = false
		}
		s.mu.Unlock()
		if current {
			s.notify(NoticeWarning, "Disconnected from server")
			s.loadOffline()
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("Real-time stream closed")
			}
			return
		}

		var raw models.RawEvent
		if err := json.Unmarshal(payload, &raw); err != nil {
			log.WithError(err).Warn("Ignoring malformed real-time message")
			continue
		}
		event, err := models.DecodeEvent(raw)
		if err != nil {
			log.WithError(err).Debug("Ignoring real-time message")
			continue
		}
		s.Apply(event)
	}
}
