package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Close reasons sent with status 1008.
const (
	reasonTokenRequired = "Authentication token required"
	reasonTokenInvalid  = "Invalid authentication token"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authctx.Identity, error)
}

// Handler upgrades /ws/notifications and drives each connection.
type Handler struct {
	hub          *Hub
	auth         Authenticator
	authTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithWriteTimeout bounds every frame write. A peer that does not drain its
// socket within d is disconnected.
func WithWriteTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

func NewHandler(hub *Hub, auth Authenticator, authTimeout time.Duration, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if authTimeout <= 0 {
		authTimeout = 10 * time.Second
	}
	h := &Handler{hub: hub, auth: auth, authTimeout: authTimeout, writeTimeout: 10 * time.Second, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/notifications", h.serveWS)
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	identity, reason := h.authenticate(r, conn)
	if identity == nil {
		h.logger.Info("websocket authentication rejected", "remote", r.RemoteAddr, "reason", reason)
		writeClose(conn, ws.StatusPolicyViolation, reason)
		return
	}
	_ = conn.SetDeadline(time.Time{})

	client := NewClient(*identity, &connTransport{conn: conn, timeout: h.writeTimeout})
	if err := h.hub.Register(client); err != nil {
		_ = client.CloseWith(ws.StatusGoingAway, "server shutting down", h.writeTimeout)
		return
	}
	var closeCode ws.StatusCode
	defer func() {
		h.hub.Unregister(client)
		if closeCode != 0 {
			_ = client.CloseWith(closeCode, "", h.writeTimeout)
			return
		}
		_ = client.Close()
	}()

	welcome := Message{
		Type:      TypeConnected,
		Message:   "Connected to PrintPress notifications",
		User:      &UserInfo{ID: identity.UserID, Name: identity.Name, Role: identity.Role},
		Timestamp: time.Now().UTC(),
	}
	if err := client.Send(welcome); err != nil {
		return
	}

	err = h.readLoop(conn, client)
	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		closeCode = closed.Code
	}
}

// authenticate takes the token from ?token=, the Authorization header, or a
// first {"type":"auth"} frame read within the auth timeout.
func (h *Handler) authenticate(r *http.Request, conn net.Conn) (*authctx.Identity, string) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		_ = conn.SetReadDeadline(time.Now().Add(h.authTimeout))
		data, op, err := wsutil.ReadClientData(conn)
		if err != nil || op != ws.OpText {
			return nil, reasonTokenRequired
		}
		var in inbound
		if json.Unmarshal(data, &in) != nil || in.Type != "auth" || in.Token == "" {
			return nil, reasonTokenRequired
		}
		token = in.Token
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.authTimeout)
	defer cancel()
	identity, err := h.auth.Authenticate(ctx, token)
	if err != nil || identity == nil {
		return nil, reasonTokenInvalid
	}
	return identity, ""
}

// readLoop reads client frames until the connection ends. Control frames
// are answered through the client's send queue.
func (h *Handler) readLoop(conn net.Conn, client *Client) error {
	onControl := func(hdr ws.Header, r io.Reader) error {
		return handleControl(client, hdr, r)
	}
	rd := &wsutil.Reader{
		Source:         conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		OnIntermediate: onControl,
	}
	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return err
		}
		if hdr.OpCode.IsControl() {
			if err := onControl(hdr, rd); err != nil {
				return err
			}
			continue
		}
		if hdr.OpCode != ws.OpText {
			if err := rd.Discard(); err != nil {
				return err
			}
			continue
		}
		data, err := io.ReadAll(rd)
		if err != nil {
			return err
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			h.logger.Debug("ignoring malformed websocket message", "user_id", client.identity.UserID)
			continue
		}

		now := time.Now().UTC()
		switch in.Type {
		case "ping":
			err = client.Send(Message{Type: TypePong, Timestamp: now})
		case "subscribe":
			err = client.Send(Message{Type: TypeSubscribed, Channels: in.Channels, Timestamp: now})
		default:
			h.logger.Debug("unknown websocket message type", "type", in.Type, "user_id", client.identity.UserID)
		}
		if err != nil {
			return err
		}
	}
}

// handleControl answers ping with pong and reports a peer close as
// wsutil.ClosedError so the caller can echo it.
func handleControl(client *Client, hdr ws.Header, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	switch hdr.OpCode {
	case ws.OpPing:
		return client.enqueue(ws.OpPong, payload)
	case ws.OpClose:
		code, reason := ws.ParseCloseFrameData(payload)
		if code.Empty() {
			code = ws.StatusNormalClosure
		}
		return wsutil.ClosedError{Code: code, Reason: reason}
	}
	return nil
}

func writeClose(conn net.Conn, code ws.StatusCode, reason string) {
	_ = wsutil.WriteServerMessage(conn, ws.OpClose, ws.NewCloseFrameBody(code, reason))
}

type connTransport struct {
	conn    net.Conn
	timeout time.Duration
}

func (t *connTransport) WriteFrame(op ws.OpCode, p []byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return err
	}
	return wsutil.WriteServerMessage(t.conn, op, p)
}

func (t *connTransport) Close() error { return t.conn.Close() }

// StatusHandler reports registry contents to admins.
type StatusHandler struct{ hub *Hub }

func NewStatusHandler(hub *Hub) *StatusHandler { return &StatusHandler{hub: hub} }

func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.With(authctx.RequireAdmin).Get("/api/v1/ws/status", h.status)
}

func (h *StatusHandler) status(w http.ResponseWriter, r *http.Request) {
	users := h.hub.ConnectedUsers()
	admins := h.hub.ConnectedAdmins()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":           "active",
		"connected_users":  len(users),
		"connected_admins": len(admins),
		"users":            users,
		"admins":           admins,
		"timestamp":        time.Now().UTC(),
	})
}
