// Package remote provides a debug.Service whose authority lives behind a
// WebSocket: breakpoint mutations are forwarded as JSON commands, and
// backend notifications are mirrored into a local model so bindings stay
// reactive. No debug-adapter protocol semantics live here; the envelope
// is plain command forwarding.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iw2rmb/waypoint"
	"github.com/iw2rmb/waypoint/debug"
	"github.com/iw2rmb/waypoint/signal"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Outbound message types.
const (
	TypeHello             = "hello"
	TypeUpdateBreakpoints = "update_breakpoints"
	TypeClearBreakpoints  = "clear_breakpoints"
)

// Inbound message types.
const (
	TypeSession             = "session"
	TypeBreakpoints         = "breakpoints"
	TypeBreakpointsRestored = "breakpoints_restored"
	TypeFrames              = "frames"
)

const (
	pingInterval          = 30 * time.Second
	maxReconnectWait      = 60 * time.Second
	defaultReconnectDelay = time.Second
	defaultMaxReconnects  = 10
)

// HelloPayload announces the client on each new connection so the
// backend can associate it with a session.
type HelloPayload struct {
	Session string `json:"session"`
	Version string `json:"version,omitempty"`
}

// BreakpointsPayload carries a breakpoint set in either direction.
type BreakpointsPayload struct {
	Source      string             `json:"source,omitempty"`
	Code        string             `json:"code,omitempty"`
	Path        string             `json:"path,omitempty"`
	Breakpoints []debug.Breakpoint `json:"breakpoints"`
}

// SessionPayload announces the backend's active session.
type SessionPayload struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
	Name string `json:"name"`
}

// FramesPayload carries the paused callstack; empty means resumed.
type FramesPayload struct {
	Frames []FramePayload `json:"frames"`
}

type FramePayload struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Line   int    `json:"line"`
}

// Options configures Dial.
type Options struct {
	// URL is the ws:// or wss:// endpoint. Required.
	URL string
	// Token, when set, is sent as a bearer Authorization header.
	Token string
	// SessionName seeds the local session until the backend announces
	// one. Empty defaults to "remote".
	SessionName string
	// Dispatch, when set, marshals inbound model mutations onto the
	// host's event loop. Nil applies them on the read goroutine.
	Dispatch func(fn func())
	// ReconnectDelay is the base redial backoff after a dropped
	// connection; the delay doubles per failed attempt and is capped
	// at one minute. Zero defaults to one second.
	ReconnectDelay time.Duration
	// MaxReconnects caps consecutive failed redial attempts before the
	// service gives up. Zero defaults to 10.
	MaxReconnects int
	// Debug enables connection logging.
	Debug bool
}

// Service is a debug.Service backed by a remote debugger.
type Service struct {
	opts     Options
	dispatch func(fn func())
	name     string

	session debug.Session
	model   *debug.Model

	modelChanged signal.Signal[*debug.Model]

	queue chan []byte
	done  chan struct{}

	reconnectDelay time.Duration
	maxReconnects  int

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// Dial connects to the backend and starts the connection loop. The
// first connect must succeed; later drops are redialed with capped
// backoff.
func Dial(ctx context.Context, opts Options) (*Service, error) {
	if opts.URL == "" {
		return nil, errors.New("remote: URL is required")
	}
	name := opts.SessionName
	if name == "" {
		name = "remote"
	}

	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	s := &Service{
		opts:           opts,
		dispatch:       dispatch,
		name:           name,
		session:        debug.Session{ID: uuid.NewString(), Name: name},
		model:          debug.NewModel(),
		queue:          make(chan []byte, 100),
		done:           make(chan struct{}),
		reconnectDelay: opts.ReconnectDelay,
		maxReconnects:  opts.MaxReconnects,
	}
	if s.reconnectDelay <= 0 {
		s.reconnectDelay = defaultReconnectDelay
	}
	if s.maxReconnects <= 0 {
		s.maxReconnects = defaultMaxReconnects
	}

	conn, err := s.dialConn(ctx)
	if err != nil {
		return nil, err
	}
	go s.run(conn)
	return s, nil
}

// Close tears the connection down. It is idempotent.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *Service) Session() debug.Session { return s.session }

func (s *Service) Model() *debug.Model { return s.model }

func (s *Service) ModelChanged() *signal.Signal[*debug.Model] { return &s.modelChanged }

func (s *Service) CodeID(code string) string { return debug.CodeID(code) }

// UpdateBreakpoints forwards the set to the backend. The local model is
// not touched; the backend's notification drives the next render.
func (s *Service) UpdateBreakpoints(ctx context.Context, code string, bps []debug.Breakpoint, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.send(TypeUpdateBreakpoints, BreakpointsPayload{
		Code:        code,
		Path:        path,
		Breakpoints: bps,
	})
}

// ClearBreakpoints forwards the clear-all command to the backend.
func (s *Service) ClearBreakpoints(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.send(TypeClearBreakpoints, nil)
}

func (s *Service) send(msgType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}
	data, err := json.Marshal(Message{
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	select {
	case <-s.done:
		return errors.New("remote: service closed")
	default:
	}

	select {
	case s.queue <- data:
		return nil
	default:
		// Queue full: drop rather than block the UI loop.
		if s.opts.Debug {
			log.Printf("[waypoint remote] send queue full, dropping %s", msgType)
		}
		return errors.New("remote: send queue full")
	}
}

func (s *Service) dialConn(ctx context.Context) (*websocket.Conn, error) {
	headers := http.Header{}
	if s.opts.Token != "" {
		headers.Set("Authorization", "Bearer "+s.opts.Token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.opts.URL, headers)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// run owns the connection lifecycle: serve the current connection, and
// on a read or write failure redial with doubling backoff, announcing
// the session again on each new connection.
func (s *Service) run(conn *websocket.Conn) {
	attempts := 0
	for {
		if conn == nil {
			attempts++
			if attempts > s.maxReconnects {
				if s.opts.Debug {
					log.Printf("[waypoint remote] giving up after %d reconnect attempts", s.maxReconnects)
				}
				return
			}
			delay := s.reconnectDelay * time.Duration(1<<uint(attempts-1))
			if delay > maxReconnectWait {
				delay = maxReconnectWait
			}
			if s.opts.Debug {
				log.Printf("[waypoint remote] reconnecting in %v (attempt %d)", delay, attempts)
			}
			select {
			case <-s.done:
				return
			case <-time.After(delay):
			}

			c, err := s.dialConn(context.Background())
			if err != nil {
				if s.opts.Debug {
					log.Printf("[waypoint remote] redial: %v", err)
				}
				continue
			}
			conn = c
			attempts = 0
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conn = conn
		s.mu.Unlock()

		s.hello(conn)
		s.serve(conn)
		conn.Close()

		select {
		case <-s.done:
			return
		default:
		}
		conn = nil
	}
}

// hello announces the client session on a fresh connection, bypassing
// the send queue so it always precedes queued commands.
func (s *Service) hello(conn *websocket.Conn) {
	raw, err := json.Marshal(HelloPayload{Session: s.name, Version: waypoint.Version()})
	if err != nil {
		return
	}
	data, err := json.Marshal(Message{
		Type:      TypeHello,
		Payload:   raw,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil && s.opts.Debug {
		log.Printf("[waypoint remote] hello: %v", err)
	}
}

// serve pumps one connection until it fails or the service closes.
func (s *Service) serve(conn *websocket.Conn) {
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-s.done:
				default:
					if s.opts.Debug {
						log.Printf("[waypoint remote] read: %v", err)
					}
				}
				return
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				if s.opts.Debug {
					log.Printf("[waypoint remote] bad message: %v", err)
				}
				continue
			}
			s.dispatch(func() { s.handle(msg) })
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-readDone:
			return
		case data := <-s.queue:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if s.opts.Debug {
					log.Printf("[waypoint remote] write: %v", err)
				}
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Service) handle(msg Message) {
	switch msg.Type {
	case TypeSession:
		var p SessionPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		s.session = debug.Session{ID: id, Path: p.Path, Name: p.Name}
		s.model = debug.NewModel()
		s.modelChanged.Emit(s.model)

	case TypeBreakpoints, TypeBreakpointsRestored:
		var p BreakpointsPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		sourceID := p.Source
		if sourceID == "" {
			sourceID = debug.SourceID(p.Path, p.Code)
		}
		if msg.Type == TypeBreakpointsRestored {
			s.model.Breakpoints.Restore(sourceID, p.Breakpoints)
		} else {
			s.model.Breakpoints.Set(sourceID, p.Breakpoints)
		}

	case TypeFrames:
		var p FramesPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		if len(p.Frames) == 0 {
			s.model.Callstack.ClearFrames()
			return
		}
		frames := make([]debug.Frame, 0, len(p.Frames))
		for _, f := range p.Frames {
			frames = append(frames, debug.Frame{Name: f.Name, SourceID: f.Source, Line: f.Line})
		}
		s.model.Callstack.SetFrames(frames)
	}
}
