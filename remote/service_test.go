package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iw2rmb/waypoint/debug"
)

// testBackend is a WebSocket endpoint that records inbound envelopes,
// can push envelopes to the connected client, and accepts redials.
type testBackend struct {
	server  *httptest.Server
	inbound chan Message
	accepts chan struct{}
	mu      sync.Mutex
	conn    *websocket.Conn
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{
		inbound: make(chan Message, 16),
		accepts: make(chan struct{}, 8),
	}
	upgrader := websocket.Upgrader{}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.mu.Lock()
		b.conn = conn
		b.mu.Unlock()
		b.accepts <- struct{}{}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg Message
			if json.Unmarshal(data, &msg) == nil {
				b.inbound <- msg
			}
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *testBackend) url() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http")
}

func (b *testBackend) awaitAccept(t *testing.T) {
	t.Helper()
	select {
	case <-b.accepts:
	case <-time.After(2 * time.Second):
		t.Fatal("backend never saw a connection")
	}
}

// drop severs the current connection server-side.
func (b *testBackend) drop(t *testing.T) {
	t.Helper()
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()
	if conn == nil {
		t.Fatal("no connection to drop")
	}
	conn.Close()
}

func (b *testBackend) push(t *testing.T, msgType string, payload any) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	var conn *websocket.Conn
	for {
		b.mu.Lock()
		conn = b.conn
		b.mu.Unlock()
		if conn != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("backend never saw a connection")
		}
		time.Sleep(5 * time.Millisecond)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(Message{Type: msgType, Payload: raw, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("push to client: %v", err)
	}
}

// next returns the next command envelope, skipping connection
// announcements.
func (b *testBackend) next(t *testing.T) Message {
	t.Helper()
	for {
		select {
		case msg := <-b.inbound:
			if msg.Type == TypeHello {
				continue
			}
			return msg
		case <-time.After(time.Second):
			t.Fatal("no envelope received within 1s")
			return Message{}
		}
	}
}

// nextRaw returns the next envelope without skipping announcements.
func (b *testBackend) nextRaw(t *testing.T) Message {
	t.Helper()
	select {
	case msg := <-b.inbound:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no envelope received within 1s")
		return Message{}
	}
}

// dialWithDispatch connects a service whose inbound mutations are held
// in a channel so the test applies them on its own goroutine.
func dialWithDispatch(t *testing.T, b *testBackend) (*Service, chan func()) {
	t.Helper()
	pending := make(chan func(), 16)
	svc, err := Dial(context.Background(), Options{
		URL:            b.url(),
		SessionName:    "kernel",
		Dispatch:       func(fn func()) { pending <- fn },
		ReconnectDelay: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, pending
}

func applyNext(t *testing.T, pending chan func()) {
	t.Helper()
	select {
	case fn := <-pending:
		fn()
	case <-time.After(time.Second):
		t.Fatal("no inbound mutation within 1s")
	}
}

func TestUpdateBreakpoints_ForwardsEnvelope(t *testing.T) {
	b := newTestBackend(t)
	svc, _ := dialWithDispatch(t, b)

	err := svc.UpdateBreakpoints(context.Background(), "x = 1", []debug.Breakpoint{
		{Line: 2, Active: true, Source: debug.Source{Name: "kernel"}},
	}, "nb.py")
	if err != nil {
		t.Fatalf("update breakpoints: %v", err)
	}

	msg := b.next(t)
	if msg.Type != TypeUpdateBreakpoints {
		t.Fatalf("envelope type: got %q, want %q", msg.Type, TypeUpdateBreakpoints)
	}
	if msg.Timestamp == 0 {
		t.Fatal("envelope timestamp must be set")
	}

	var p BreakpointsPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.Code != "x = 1" || p.Path != "nb.py" {
		t.Fatalf("payload identity: got code=%q path=%q", p.Code, p.Path)
	}
	if len(p.Breakpoints) != 1 || p.Breakpoints[0].Line != 2 {
		t.Fatalf("payload breakpoints: got %v, want one at line 2", p.Breakpoints)
	}
}

func TestClearBreakpoints_ForwardsEnvelope(t *testing.T) {
	b := newTestBackend(t)
	svc, _ := dialWithDispatch(t, b)

	if err := svc.ClearBreakpoints(context.Background()); err != nil {
		t.Fatalf("clear breakpoints: %v", err)
	}
	if msg := b.next(t); msg.Type != TypeClearBreakpoints {
		t.Fatalf("envelope type: got %q, want %q", msg.Type, TypeClearBreakpoints)
	}
}

func TestInbound_BreakpointsMirrorIntoModel(t *testing.T) {
	b := newTestBackend(t)
	svc, pending := dialWithDispatch(t, b)

	var changed []string
	svc.Model().Breakpoints.Changed.Connect(func(id string) { changed = append(changed, id) })

	b.push(t, TypeBreakpoints, BreakpointsPayload{
		Source:      "nb.py",
		Breakpoints: []debug.Breakpoint{{Line: 4, Verified: true}},
	})
	applyNext(t, pending)

	got := svc.Model().Breakpoints.Breakpoints("nb.py")
	if len(got) != 1 || got[0].Line != 4 || !got[0].Verified {
		t.Fatalf("mirrored breakpoints: got %v, want one verified at line 4", got)
	}
	if len(changed) != 1 || changed[0] != "nb.py" {
		t.Fatalf("changed notifications: got %v, want [nb.py]", changed)
	}
}

func TestInbound_RestoredUsesRestoreSignal(t *testing.T) {
	b := newTestBackend(t)
	svc, pending := dialWithDispatch(t, b)

	var restored []string
	svc.Model().Breakpoints.Restored.Connect(func(id string) { restored = append(restored, id) })

	b.push(t, TypeBreakpointsRestored, BreakpointsPayload{
		Code:        "x = 1",
		Breakpoints: []debug.Breakpoint{{Line: 1}},
	})
	applyNext(t, pending)

	id := debug.CodeID("x = 1")
	if len(restored) != 1 || restored[0] != id {
		t.Fatalf("restored notifications: got %v, want [%s]", restored, id)
	}
}

func TestInbound_SessionSwapsModelAndIdentity(t *testing.T) {
	b := newTestBackend(t)
	svc, pending := dialWithDispatch(t, b)

	oldModel := svc.Model()
	swaps := 0
	svc.ModelChanged().Connect(func(*debug.Model) { swaps++ })

	b.push(t, TypeSession, SessionPayload{ID: "sess-9", Name: "py-kernel", Path: "nb.py"})
	applyNext(t, pending)

	if swaps != 1 {
		t.Fatalf("model swaps: got %d, want %d", swaps, 1)
	}
	if svc.Model() == oldModel {
		t.Fatal("session announcement must install a fresh model")
	}
	sess := svc.Session()
	if sess.ID != "sess-9" || sess.Name != "py-kernel" || sess.Path != "nb.py" {
		t.Fatalf("session after announcement: got %+v", sess)
	}
}

func TestInbound_FramesDriveCallstack(t *testing.T) {
	b := newTestBackend(t)
	svc, pending := dialWithDispatch(t, b)

	var frames []*debug.Frame
	svc.Model().Callstack.CurrentFrameChanged.Connect(func(f *debug.Frame) { frames = append(frames, f) })

	b.push(t, TypeFrames, FramesPayload{Frames: []FramePayload{{Name: "main", Line: 12}}})
	applyNext(t, pending)

	if f := svc.Model().Callstack.CurrentFrame(); f == nil || f.Line != 12 {
		t.Fatalf("current frame: got %v, want line 12", f)
	}

	b.push(t, TypeFrames, FramesPayload{})
	applyNext(t, pending)

	if f := svc.Model().Callstack.CurrentFrame(); f != nil {
		t.Fatalf("current frame after resume: got %v, want nil", f)
	}
	if len(frames) != 2 || frames[1] != nil {
		t.Fatalf("frame notifications: got %d (last %v), want 2 ending nil", len(frames), frames[len(frames)-1])
	}
}

func TestReconnect_RedialsAndAnnouncesSession(t *testing.T) {
	b := newTestBackend(t)
	svc, _ := dialWithDispatch(t, b)

	b.awaitAccept(t)
	if msg := b.nextRaw(t); msg.Type != TypeHello {
		t.Fatalf("first envelope: got %q, want %q", msg.Type, TypeHello)
	}

	b.drop(t)
	b.awaitAccept(t)

	msg := b.nextRaw(t)
	if msg.Type != TypeHello {
		t.Fatalf("envelope after redial: got %q, want %q", msg.Type, TypeHello)
	}
	var p HelloPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("unmarshal announcement: %v", err)
	}
	if p.Session != "kernel" {
		t.Fatalf("announced session: got %q, want %q", p.Session, "kernel")
	}

	if err := svc.UpdateBreakpoints(context.Background(), "x = 1", nil, "nb.py"); err != nil {
		t.Fatalf("update after reconnect: %v", err)
	}
	if got := b.next(t); got.Type != TypeUpdateBreakpoints {
		t.Fatalf("forward after reconnect: got %q, want %q", got.Type, TypeUpdateBreakpoints)
	}
}

func TestDial_RequiresURL(t *testing.T) {
	if _, err := Dial(context.Background(), Options{}); err == nil {
		t.Fatal("dial without URL must fail")
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	b := newTestBackend(t)
	svc, _ := dialWithDispatch(t, b)

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := svc.UpdateBreakpoints(context.Background(), "", nil, ""); err == nil {
		t.Fatal("update after close must fail")
	}
}
