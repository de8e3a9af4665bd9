package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	defaultQueueSize = 64
)

// -----------------------------------------------------------------------------
// Session Structure
// -----------------------------------------------------------------------------

// Session is one connected client. It owns its outbound queue exclusively;
// the hub and the router only ever touch it through Deliver.
type Session struct {
	id          string
	server      *Server
	conn        *websocket.Conn
	send        chan interface{}
	connectedAt time.Time

	subscription atomic.Value // subscriptionScope
	lastActivity atomic.Int64 // unix nanos

	sendMu    sync.Mutex // serializes the drop-oldest dance in Deliver
	closeOnce sync.Once
}

type subscriptionScope struct {
	symbol    string
	timeframe string
}

// -----------------------------------------------------------------------------

func newSession(id string, server *Server, conn *websocket.Conn, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	s := &Session{
		id:          id,
		server:      server,
		conn:        conn,
		send:        make(chan interface{}, queueSize),
		connectedAt: time.Now(),
	}
	s.subscription.Store(subscriptionScope{})
	s.touch()
	return s
}

// -----------------------------------------------------------------------------
// stream.Subscriber implementation
// -----------------------------------------------------------------------------

func (s *Session) ID() string {
	return s.id
}

// -----------------------------------------------------------------------------

func (s *Session) Subscription() (string, string) {
	scope := s.subscription.Load().(subscriptionScope)
	return scope.symbol, scope.timeframe
}

// -----------------------------------------------------------------------------

// Deliver enqueues without ever blocking the caller. When the queue is full
// the oldest entry is dropped so a stalled client converges on the newest
// state once it resumes reading.
func (s *Session) Deliver(msg interface{}) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	select {
	case s.send <- msg:
		return
	default:
	}

	// Queue full: drop the oldest, then retry once.
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- msg:
	default:
	}
}

// -----------------------------------------------------------------------------

func (s *Session) setSubscription(symbol, timeframe string) {
	s.subscription.Store(subscriptionScope{symbol: symbol, timeframe: timeframe})
}

// -----------------------------------------------------------------------------

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// idleFor reports how long the session has been without any activity.
func (s *Session) idleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastActivity.Load()))
}

// -----------------------------------------------------------------------------

// close shuts the connection down exactly once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from client
// Acts as a watchdog for the connection
// -----------------------------------------------------------------------------

func (s *Session) readPump() {
	defer func() {
		s.server.dropSession(s)
		s.close()
		s.server.Logger.Info("Session %s disconnected", s.id)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.touch()
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.server.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		s.touch()
		s.server.router.Handle(s, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(message); err != nil {
				s.server.Logger.Info("Write error: %v", err)
				return
			}
			s.touch()

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
