package realtime

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// sendBuffer is the number of frames a client may have queued before it is
// treated as stalled.
const sendBuffer = 64

var (
	errClientClosed  = errors.New("realtime: client closed")
	errClientStalled = errors.New("realtime: send queue full")
)

// Transport is the write side of one live connection. Only the client's
// writer goroutine calls WriteFrame.
type Transport interface {
	WriteFrame(op ws.OpCode, p []byte) error
	Close() error
}

type frame struct {
	op      ws.OpCode
	payload []byte
}

// Client is a registered, authenticated connection. Every write to the
// transport goes through the send queue and a single writer goroutine.
type Client struct {
	id          uuid.UUID
	identity    authctx.Identity
	connectedAt time.Time
	transport   Transport

	send    chan frame
	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
	hub     atomic.Pointer[Hub]
}

func NewClient(identity authctx.Identity, transport Transport) *Client {
	c := &Client{
		id:          uuid.New(),
		identity:    identity,
		connectedAt: time.Now().UTC(),
		transport:   transport,
		send:        make(chan frame, sendBuffer),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *Client) Identity() authctx.Identity { return c.identity }

// Send marshals msg and queues it as a text frame.
func (c *Client) Send(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.write(payload)
}

func (c *Client) write(payload []byte) error {
	return c.enqueue(ws.OpText, payload)
}

// enqueue never blocks. A full queue means the peer is not draining.
func (c *Client) enqueue(op ws.OpCode, payload []byte) error {
	if c.closed.Load() {
		return errClientClosed
	}
	select {
	case c.send <- frame{op: op, payload: payload}:
		return nil
	default:
		return errClientStalled
	}
}

func (c *Client) writeLoop() {
	defer close(c.stopped)
	for {
		select {
		case f := <-c.send:
			if err := c.transport.WriteFrame(f.op, f.payload); err != nil {
				c.fail(err)
				return
			}
			if f.op == ws.OpClose {
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// fail drops a connection whose write errored or timed out.
func (c *Client) fail(err error) {
	if c.closed.Load() {
		return
	}
	if h := c.hub.Load(); h != nil {
		h.drop(c, err)
		return
	}
	_ = c.Close()
}

// CloseWith queues a close frame and waits up to wait for it to be written
// before closing the transport.
func (c *Client) CloseWith(code ws.StatusCode, reason string, wait time.Duration) error {
	if err := c.enqueue(ws.OpClose, ws.NewCloseFrameBody(code, reason)); err == nil {
		timer := time.NewTimer(wait)
		select {
		case <-c.stopped:
		case <-timer.C:
		}
		timer.Stop()
	}
	return c.Close()
}

// Close stops the writer and closes the transport once. Queued frames are
// discarded.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	return c.transport.Close()
}

// ClientInfo is a point-in-time view of a connection.
type ClientInfo struct {
	ConnectionID uuid.UUID    `json:"connection_id"`
	UserID       uuid.UUID    `json:"user_id"`
	Name         string       `json:"name"`
	Role         authctx.Role `json:"role"`
	ConnectedAt  time.Time    `json:"connected_at"`
}

func (c *Client) Info() ClientInfo {
	return ClientInfo{
		ConnectionID: c.id,
		UserID:       c.identity.UserID,
		Name:         c.identity.Name,
		Role:         c.identity.Role,
		ConnectedAt:  c.connectedAt,
	}
}
