package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	closeGrace     = time.Second
	maxMessageSize = 8192
	sendQueueSize  = 64
)

type outbound struct {
	text   string
	close  bool
	code   int
	reason string
}

// conn is one websocket with an ordered outbound queue drained by a single writer
type conn struct {
	id       string
	ws       *websocket.Conn
	queue    chan outbound
	stop     chan struct{}
	readDone chan struct{}
	logger   zerolog.Logger

	mu      sync.Mutex
	closing bool

	stopOnce sync.Once
	readOnce sync.Once
}

func newConn(id string, ws *websocket.Conn, logger zerolog.Logger) *conn {
	return &conn{
		id:       id,
		ws:       ws,
		queue:    make(chan outbound, sendQueueSize),
		stop:     make(chan struct{}),
		readDone: make(chan struct{}),
		logger:   logger.With().Str("conn_id", id).Logger(),
	}
}

func (c *conn) ID() string {
	return c.id
}

// Send queues a text frame. It never blocks; a closed or saturated connection fails.
func (c *conn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return ErrConnClosed
	}

	select {
	case c.queue <- outbound{text: text}:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close queues a close frame behind any pending messages. Later calls are no-ops.
func (c *conn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return
	}
	c.closing = true

	select {
	case c.queue <- outbound{close: true, code: code, reason: reason}:
	default:
		// queue is full, give up on the pending messages
		go c.shutdown()
	}
}

func (c *conn) run() {
	go c.writePump()
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case msg := <-c.queue:
			if msg.close {
				frame := websocket.FormatCloseMessage(msg.code, msg.reason)
				if err := c.ws.WriteControl(websocket.CloseMessage, frame, time.Now().Add(writeWait)); err != nil {
					c.logger.Debug().Err(err).Msg("failed to write close frame")
					return
				}
				// give the peer a moment to answer the close handshake
				select {
				case <-c.readDone:
				case <-time.After(closeGrace):
				}
				return
			}

			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, []byte(msg.text)); err != nil {
				c.logger.Warn().Err(err).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug().Err(err).Msg("failed to write ping")
				return
			}
		case <-c.stop:
			return
		}
	}
}

// shutdown tears down the socket immediately
func (c *conn) shutdown() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.closing = true
		c.mu.Unlock()

		close(c.stop)
		_ = c.ws.Close()
	})
}

// readLoop feeds every text frame to fn until the peer goes away
func (c *conn) readLoop(fn func(text string)) {
	defer c.readOnce.Do(func() { close(c.readDone) })

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		if messageType != websocket.TextMessage || fn == nil {
			continue
		}
		fn(string(data))
	}
}
