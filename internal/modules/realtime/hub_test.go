package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

type fakeTransport struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeTransport) WriteFrame(_ ws.OpCode, p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, append([]byte(nil), p...))
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeTransport) frame(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[i]
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// stalledTransport accepts nothing until it is closed, like a peer that
// stopped reading.
type stalledTransport struct {
	once   sync.Once
	closed chan struct{}
}

func newStalledTransport() *stalledTransport {
	return &stalledTransport{closed: make(chan struct{})}
}

func (s *stalledTransport) WriteFrame(ws.OpCode, []byte) error {
	<-s.closed
	return errors.New("use of closed connection")
}

func (s *stalledTransport) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *stalledTransport) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func newTestClient(role authctx.Role) (*Client, *fakeTransport) {
	tr := &fakeTransport{}
	id := authctx.Identity{UserID: uuid.New(), Name: string(role) + "-user", Role: role}
	return NewClient(id, tr), tr
}

func TestBroadcastToAdminsNoConnections(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	if got := hub.BroadcastToAdmins(NewNotification("x")); got != 0 {
		t.Errorf("BroadcastToAdmins() = %d, want 0", got)
	}
}

func TestBroadcastToAdminsSkipsWorkers(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	admin1, tr1 := newTestClient(authctx.RoleAdmin)
	admin2, tr2 := newTestClient(authctx.RoleAdmin)
	worker, trw := newTestClient(authctx.RoleWorker)
	for _, c := range []*Client{admin1, admin2, worker} {
		if err := hub.Register(c); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	if got := hub.BroadcastToAdmins(NewNotification(map[string]string{"title": "Low Stock Alert"})); got != 2 {
		t.Errorf("BroadcastToAdmins() = %d, want 2", got)
	}
	if !eventually(t, func() bool { return tr1.count() == 1 && tr2.count() == 1 }) {
		t.Fatalf("admin frames = %d, %d, want 1, 1", tr1.count(), tr2.count())
	}
	if trw.count() != 0 {
		t.Errorf("worker frames = %d, want 0", trw.count())
	}

	var msg Message
	if err := json.Unmarshal(tr1.frame(0), &msg); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if msg.Type != TypeNotification {
		t.Errorf("Type = %q, want %q", msg.Type, TypeNotification)
	}
}

func TestBroadcastDropsFailedConnection(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	good, goodTr := newTestClient(authctx.RoleAdmin)
	bad, badTr := newTestClient(authctx.RoleAdmin)
	badTr.fail = true
	_ = hub.Register(good)
	_ = hub.Register(bad)

	hub.BroadcastToAdmins(NewNotification("x"))

	if !eventually(t, func() bool { return len(hub.ConnectedAdmins()) == 1 }) {
		t.Errorf("ConnectedAdmins() = %d, want 1", len(hub.ConnectedAdmins()))
	}
	if !badTr.isClosed() {
		t.Error("failed transport was not closed")
	}
	if !eventually(t, func() bool { return goodTr.count() == 1 }) {
		t.Errorf("healthy admin frames = %d, want 1", goodTr.count())
	}
}

func TestBroadcastNotBlockedByStalledAdmin(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	healthy, tr := newTestClient(authctx.RoleAdmin)
	stalledTr := newStalledTransport()
	stalled := NewClient(authctx.Identity{UserID: uuid.New(), Name: "Grace", Role: authctx.RoleAdmin}, stalledTr)
	_ = hub.Register(healthy)
	_ = hub.Register(stalled)

	// One frame is held by the blocked writer, the rest fill the queue, and
	// the next one finds it full.
	total := sendBuffer + 2
	var spent time.Duration
	for i := 0; i < total; i++ {
		start := time.Now()
		hub.BroadcastToAdmins(NewNotification(map[string]int{"seq": i}))
		spent += time.Since(start)

		want := i + 1
		if !eventually(t, func() bool { return tr.count() == want }) {
			t.Fatalf("healthy admin frames = %d after broadcast %d, want %d", tr.count(), i, want)
		}
	}

	if spent > 500*time.Millisecond {
		t.Errorf("broadcasts took %v with a stalled admin, want under 500ms", spent)
	}
	if !eventually(t, func() bool { return len(hub.ConnectedAdmins()) == 1 }) {
		t.Errorf("ConnectedAdmins() = %d, want 1", len(hub.ConnectedAdmins()))
	}
	if !stalledTr.isClosed() {
		t.Error("stalled transport was not closed")
	}
	if admins := hub.ConnectedAdmins(); len(admins) == 1 && admins[0].UserID != healthy.Identity().UserID {
		t.Errorf("remaining admin = %v, want %v", admins[0].UserID, healthy.Identity().UserID)
	}
}

func TestBroadcastToUserAllConnections(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	c1, tr1 := newTestClient(authctx.RoleWorker)
	tr2 := &fakeTransport{}
	c2 := NewClient(c1.Identity(), tr2)
	other, trOther := newTestClient(authctx.RoleWorker)
	_ = hub.Register(c1)
	_ = hub.Register(c2)
	_ = hub.Register(other)

	if !hub.BroadcastToUser(c1.Identity().UserID, NewNotification("x")) {
		t.Fatal("BroadcastToUser() = false, want true")
	}
	if !eventually(t, func() bool { return tr1.count() == 1 && tr2.count() == 1 }) {
		t.Errorf("frames = %d, %d, want 1, 1", tr1.count(), tr2.count())
	}
	if trOther.count() != 0 {
		t.Errorf("other user frames = %d, want 0", trOther.count())
	}
	if hub.BroadcastToUser(uuid.New(), NewNotification("x")) {
		t.Error("BroadcastToUser(unknown) = true, want false")
	}
}

func TestClientSendAfterClose(t *testing.T) {
	t.Parallel()

	c, tr := newTestClient(authctx.RoleAdmin)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Send(NewNotification("x")); !errors.Is(err, errClientClosed) {
		t.Errorf("Send() after Close error = %v, want %v", err, errClientClosed)
	}
	if !tr.isClosed() {
		t.Error("transport not closed")
	}
}

func TestUnregisterRemovesFromBothSets(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	admin, _ := newTestClient(authctx.RoleAdmin)
	_ = hub.Register(admin)
	hub.Unregister(admin)
	hub.Unregister(admin)

	if n := len(hub.ConnectedUsers()); n != 0 {
		t.Errorf("ConnectedUsers() = %d, want 0", n)
	}
	if n := len(hub.ConnectedAdmins()); n != 0 {
		t.Errorf("ConnectedAdmins() = %d, want 0", n)
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c, _ := newTestClient(authctx.RoleAdmin)
			_ = hub.Register(c)
			hub.Unregister(c)
			_ = c.Close()
		}()
		go func() {
			defer wg.Done()
			hub.BroadcastToAdmins(NewNotification("x"))
		}()
	}
	wg.Wait()

	if n := len(hub.ConnectedUsers()); n != 0 {
		t.Errorf("ConnectedUsers() = %d, want 0", n)
	}
}

func TestHubClose(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	c, tr := newTestClient(authctx.RoleWorker)
	_ = hub.Register(c)
	hub.Close()

	if !tr.isClosed() {
		t.Error("client transport not closed")
	}
	late, _ := newTestClient(authctx.RoleAdmin)
	if err := hub.Register(late); !errors.Is(err, ErrHubClosed) {
		t.Errorf("Register() after Close error = %v, want %v", err, ErrHubClosed)
	}
}
