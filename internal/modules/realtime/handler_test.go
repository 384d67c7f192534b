package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type stubAuth map[string]authctx.Identity

func (s stubAuth) Authenticate(_ context.Context, token string) (*authctx.Identity, error) {
	id, ok := s[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &id, nil
}

func newTestServer(t *testing.T, opts ...HandlerOption) (*Hub, string) {
	t.Helper()
	hub := NewHub(testLogger())
	auth := stubAuth{
		"admin-token":  {UserID: uuid.New(), Name: "Ada", Role: authctx.RoleAdmin},
		"admin2-token": {UserID: uuid.New(), Name: "Grace", Role: authctx.RoleAdmin},
	}
	r := chi.NewRouter()
	NewHandler(hub, auth, 2*time.Second, testLogger(), opts...).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
}

func dial(t *testing.T, url string) net.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		t.Fatalf("ws.Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if br != nil {
		// Frames sent right after the handshake may already be buffered.
		return &bufferedConn{Conn: conn, r: br}
	}
	return conn
}

type bufferedConn struct {
	net.Conn
	r io.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

func readMessage(t *testing.T, conn net.Conn) Message {
	t.Helper()
	data, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.Fatalf("ReadServerText() error = %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return msg
}

func readClose(t *testing.T, conn net.Conn) (ws.StatusCode, string) {
	t.Helper()
	frame, err := ws.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if frame.Header.OpCode != ws.OpClose {
		t.Fatalf("OpCode = %v, want close", frame.Header.OpCode)
	}
	return ws.ParseCloseFrameData(frame.Payload)
}

func TestHandlerQueryTokenHandshake(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)
	conn := dial(t, url+"?token=admin-token")

	welcome := readMessage(t, conn)
	if welcome.Type != TypeConnected {
		t.Fatalf("Type = %q, want %q", welcome.Type, TypeConnected)
	}
	if welcome.User == nil || welcome.User.Name != "Ada" || welcome.User.Role != authctx.RoleAdmin {
		t.Errorf("User = %+v, want Ada/admin", welcome.User)
	}
	if n := len(hub.ConnectedAdmins()); n != 1 {
		t.Errorf("ConnectedAdmins() = %d, want 1", n)
	}

	if err := wsutil.WriteClientText(conn, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != TypePong {
		t.Errorf("reply Type = %q, want %q", msg.Type, TypePong)
	}

	if err := wsutil.WriteClientText(conn, []byte(`{"type":"subscribe","channels":["jobs","payments"]}`)); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	msg := readMessage(t, conn)
	if msg.Type != TypeSubscribed || len(msg.Channels) != 2 {
		t.Errorf("reply = %+v, want subscribed with 2 channels", msg)
	}

	if got := hub.BroadcastToAdmins(NewNotification(map[string]string{"title": "New Job Created"})); got != 1 {
		t.Errorf("BroadcastToAdmins() = %d, want 1", got)
	}
	if msg := readMessage(t, conn); msg.Type != TypeNotification {
		t.Errorf("pushed Type = %q, want %q", msg.Type, TypeNotification)
	}
}

func TestHandlerFirstFrameAuth(t *testing.T) {
	t.Parallel()

	_, url := newTestServer(t)
	conn := dial(t, url)

	if err := wsutil.WriteClientText(conn, []byte(`{"type":"auth","token":"admin-token"}`)); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != TypeConnected {
		t.Errorf("Type = %q, want %q", msg.Type, TypeConnected)
	}
}

func TestHandlerRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)
	conn := dial(t, url+"?token=forged")

	code, reason := readClose(t, conn)
	if code != ws.StatusPolicyViolation {
		t.Errorf("close code = %d, want %d", code, ws.StatusPolicyViolation)
	}
	if reason != "Invalid authentication token" {
		t.Errorf("close reason = %q, want %q", reason, "Invalid authentication token")
	}
	if n := len(hub.ConnectedUsers()); n != 0 {
		t.Errorf("ConnectedUsers() = %d, want 0", n)
	}
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	t.Parallel()

	_, url := newTestServer(t)
	conn := dial(t, url)

	if err := wsutil.WriteClientText(conn, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	code, reason := readClose(t, conn)
	if code != ws.StatusPolicyViolation || reason != "Authentication token required" {
		t.Errorf("close = (%d, %q), want (1008, %q)", code, reason, "Authentication token required")
	}
}

func TestHandlerUnregistersOnDisconnect(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)
	conn := dial(t, url+"?token=admin-token")
	readMessage(t, conn)
	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(hub.ConnectedUsers()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("ConnectedUsers() = %d after disconnect, want 0", len(hub.ConnectedUsers()))
}

func TestHandlerAnswersControlPingsDuringBroadcast(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)
	conn := dial(t, url+"?token=admin-token")
	readMessage(t, conn)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			ping := ws.MaskFrame(ws.NewPingFrame([]byte("hb")))
			if err := ws.WriteFrame(conn, ping); err != nil {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			hub.BroadcastToAdmins(NewNotification(map[string]int{"seq": i}))
		}
	}()

	pongs, notes := 0, 0
	for pongs < n || notes < n {
		f, err := ws.ReadFrame(conn)
		if err != nil {
			t.Fatalf("ReadFrame() error = %v after %d pongs, %d notifications", err, pongs, notes)
		}
		switch f.Header.OpCode {
		case ws.OpPong:
			if string(f.Payload) != "hb" {
				t.Errorf("pong payload = %q, want %q", f.Payload, "hb")
			}
			pongs++
		case ws.OpText:
			var msg Message
			if err := json.Unmarshal(f.Payload, &msg); err != nil {
				t.Fatalf("corrupt text frame %q: %v", f.Payload, err)
			}
			if msg.Type != TypeNotification {
				t.Errorf("Type = %q, want %q", msg.Type, TypeNotification)
			}
			notes++
		default:
			t.Fatalf("unexpected opcode %v", f.Header.OpCode)
		}
	}
	wg.Wait()
}

func TestHandlerEchoesPeerClose(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t)
	conn := dial(t, url+"?token=admin-token")
	readMessage(t, conn)

	closeFrame := ws.MaskFrame(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, "bye")))
	if err := ws.WriteFrame(conn, closeFrame); err != nil {
		t.Fatalf("write close: %v", err)
	}
	if code, _ := readClose(t, conn); code != ws.StatusNormalClosure {
		t.Errorf("close code = %d, want %d", code, ws.StatusNormalClosure)
	}
	if !eventually(t, func() bool { return len(hub.ConnectedUsers()) == 0 }) {
		t.Errorf("ConnectedUsers() = %d, want 0", len(hub.ConnectedUsers()))
	}
}

func TestHandlerStalledPeerDoesNotBlockBroadcast(t *testing.T) {
	t.Parallel()

	hub, url := newTestServer(t, WithWriteTimeout(200*time.Millisecond))

	// The stalled peer reads its welcome frame and then never reads again.
	stalled := dial(t, url+"?token=admin2-token")
	readMessage(t, stalled)

	reader := dial(t, url+"?token=admin-token")
	readMessage(t, reader)
	_ = reader.SetDeadline(time.Now().Add(20 * time.Second))

	received := make(chan struct{}, 1)
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, err := wsutil.ReadServerText(reader); err != nil {
				readErr <- err
				return
			}
			received <- struct{}{}
		}
	}()

	// Large frames fill the stalled peer's socket buffers quickly.
	body := strings.Repeat("x", 256<<10)
	const total = 100
	var spent time.Duration
	for i := 0; i < total; i++ {
		start := time.Now()
		hub.BroadcastToAdmins(NewNotification(map[string]string{"title": "Low Stock Alert", "body": body}))
		spent += time.Since(start)

		select {
		case <-received:
		case err := <-readErr:
			t.Fatalf("reading admin stopped after %d frames: %v", i, err)
		case <-time.After(5 * time.Second):
			t.Fatalf("reading admin did not get frame %d", i)
		}
	}

	if spent > 2*time.Second {
		t.Errorf("broadcasts took %v with a stalled peer, want under 2s", spent)
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(hub.ConnectedAdmins()) != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	admins := hub.ConnectedAdmins()
	if len(admins) != 1 || admins[0].Name != "Ada" {
		t.Errorf("ConnectedAdmins() = %+v, want only Ada", admins)
	}
}
