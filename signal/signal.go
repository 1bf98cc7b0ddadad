// Package signal provides a minimal typed observer primitive.
//
// A Signal[T] fans an emitted value out to every connected listener, in
// connection order, on the emitter's goroutine. Connections are handles:
// holders disconnect them when the observing side is disposed, mirroring
// the unsubscribe-on-dispose discipline the rest of the module relies on.
package signal

// Signal fans values of type T out to connected listeners.
//
// The zero value is ready to use. Signal is not safe for concurrent use;
// it is meant for single-goroutine, event-loop style wiring.
type Signal[T any] struct {
	conns  []*Connection[T]
	nextID int
}

// Connection is a handle to one listener registration.
type Connection[T any] struct {
	sig *Signal[T]
	id  int
	fn  func(T)
}

// Connect registers fn and returns its connection handle.
// A nil fn still yields a valid, disconnectable handle.
func (s *Signal[T]) Connect(fn func(T)) *Connection[T] {
	s.nextID++
	c := &Connection[T]{sig: s, id: s.nextID, fn: fn}
	s.conns = append(s.conns, c)
	return c
}

// Emit delivers v to every connected listener in connection order.
func (s *Signal[T]) Emit(v T) {
	// Snapshot so listeners may disconnect (themselves or others) mid-emit.
	conns := make([]*Connection[T], len(s.conns))
	copy(conns, s.conns)
	for _, c := range conns {
		if c.sig == nil || c.fn == nil {
			continue
		}
		c.fn(v)
	}
}

// Len returns the number of live connections.
func (s *Signal[T]) Len() int { return len(s.conns) }

// Disconnect removes the connection from its signal. It is safe to call
// on a nil or already-disconnected handle.
func (c *Connection[T]) Disconnect() {
	if c == nil || c.sig == nil {
		return
	}
	conns := c.sig.conns
	for i, other := range conns {
		if other == c {
			c.sig.conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	c.sig = nil
	c.fn = nil
}

// Group collects connections so they can be released together.
//
// The zero value is ready to use.
type Group struct {
	release []func()
}

// Add retains a connection-like handle for later release.
func (g *Group) Add(disconnect func()) {
	if disconnect == nil {
		return
	}
	g.release = append(g.release, disconnect)
}

// DisconnectAll releases every retained handle and empties the group.
func (g *Group) DisconnectAll() {
	for _, fn := range g.release {
		fn()
	}
	g.release = nil
}
