package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	idlePingInterval = 30 * time.Second
	sendBufferSize   = 16
)

// client owns one connection. Only writeLoop writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue drops the message when the client is gone or too slow to drain its buffer.
func (that *client) enqueue(data []byte) bool {
	select {
	case <-that.done:
		return false
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// writeLoop sends queued messages and keeps an idle connection alive with a ping message.
func (that *client) writeLoop() error {
	defer that.conn.Close()

	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()

	lastWrite := time.Now()
	ping := mustMarshal(Message{Action: actionPing})

	for {
		select {
		case <-that.done:
			return nil
		case msg := <-that.send:
			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}
			if err := that.conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
