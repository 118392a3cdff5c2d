package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

const defaultReplyTimeout = 60 * time.Second

// Message is the frame relayed between clients and the language-model
// service. The relay only correlates ids; content passes through untouched.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// Relay holds one persistent websocket to the language-model service and
// multiplexes requests from all callers over it. Replies are routed back by
// message id.
type Relay struct {
	conn    *websocket.Conn
	pending sync.Map // message id -> chan Message

	writeMu   sync.Mutex
	closed    chan struct{}
	closeOnce sync.Once
}

func Dial(url, origin string) (*Relay, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, fmt.Errorf("dial llm service: %w", err)
	}

	r := &Relay{
		conn:   conn,
		closed: make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

func (r *Relay) readLoop() {
	for {
		var msg Message
		if err := websocket.JSON.Receive(r.conn, &msg); err != nil {
			slog.Error("relay receive failed", "error", err)
			r.shutdown()
			return
		}

		if ch, ok := r.pending.Load(msg.ID); ok {
			// Buffered channel; if the caller already gave up the
			// reply is dropped here instead of blocking the loop.
			select {
			case ch.(chan Message) <- msg:
			default:
			}
		} else {
			slog.Warn("received unawaited message", "id", msg.ID)
		}
	}
}

// Send writes msg to the language-model service and waits for the correlated
// reply.
func (r *Relay) Send(ctx context.Context, msg Message) (*Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	ch := make(chan Message, 1)
	r.pending.Store(msg.ID, ch)
	defer r.pending.Delete(msg.ID)

	r.writeMu.Lock()
	err := websocket.JSON.Send(r.conn, msg)
	r.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("relay send: %w", err)
	}

	select {
	case reply := <-ch:
		return &reply, nil
	case <-r.closed:
		return nil, errors.New("relay connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(defaultReplyTimeout):
		return nil, errors.New("relay reply timeout")
	}
}

func (r *Relay) Close() error {
	r.shutdown()
	return r.conn.Close()
}

func (r *Relay) shutdown() {
	r.closeOnce.Do(func() { close(r.closed) })
}
