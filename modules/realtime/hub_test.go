package realtime

import (
	"encoding/json"
	"sync"
	"testing"
)

// fakeConn records frames written to it.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var events []string
	for _, frame := range c.frames {
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("bad frame %q: %v", frame, err)
		}
		events = append(events, env.Event)
	}
	return events
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub, err := NewHub()
	if err != nil {
		t.Fatalf("NewHub() error = %v", err)
	}
	return hub
}

func TestConnectAndAuthenticate(t *testing.T) {
	hub := newTestHub(t)

	client := hub.Connect(&fakeConn{})
	if client.ID == "" {
		t.Fatal("no connection id assigned")
	}
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
	if hub.UserConnectionCount("alice") != 0 {
		t.Error("unauthenticated connection counted for a user")
	}

	if !hub.Authenticate(client.ID, "alice") {
		t.Fatal("Authenticate() = false for live connection")
	}
	if hub.UserConnectionCount("alice") != 1 {
		t.Errorf("UserConnectionCount(alice) = %d, want 1", hub.UserConnectionCount("alice"))
	}

	if hub.Authenticate("no-such-conn", "alice") {
		t.Error("Authenticate() = true for unknown connection")
	}
}

func TestReauthenticationMovesUser(t *testing.T) {
	hub := newTestHub(t)

	client := hub.Connect(&fakeConn{})
	hub.Authenticate(client.ID, "alice")
	hub.Authenticate(client.ID, "bob")

	if hub.UserConnectionCount("alice") != 0 {
		t.Errorf("alice still has %d connections", hub.UserConnectionCount("alice"))
	}
	if hub.UserConnectionCount("bob") != 1 {
		t.Errorf("UserConnectionCount(bob) = %d, want 1", hub.UserConnectionCount("bob"))
	}
}

func TestEmitToUserIsOwnerScoped(t *testing.T) {
	hub := newTestHub(t)

	aliceLaptop := &fakeConn{}
	alicePhone := &fakeConn{}
	bobConn := &fakeConn{}
	anonConn := &fakeConn{}

	c1 := hub.Connect(aliceLaptop)
	c2 := hub.Connect(alicePhone)
	c3 := hub.Connect(bobConn)
	hub.Connect(anonConn)

	hub.Authenticate(c1.ID, "alice")
	hub.Authenticate(c2.ID, "alice")
	hub.Authenticate(c3.ID, "bob")

	sent := hub.EmitToUser("alice", "taskCreated", map[string]string{"taskId": "t1"})
	if sent != 2 {
		t.Errorf("EmitToUser() = %d, want 2", sent)
	}

	if got := aliceLaptop.events(t); len(got) != 1 || got[0] != "taskCreated" {
		t.Errorf("alice laptop events = %v, want [taskCreated]", got)
	}
	if got := alicePhone.events(t); len(got) != 1 {
		t.Errorf("alice phone events = %v, want one event", got)
	}
	if got := bobConn.events(t); len(got) != 0 {
		t.Errorf("bob received %v, want nothing", got)
	}
	if got := anonConn.events(t); len(got) != 0 {
		t.Errorf("anonymous connection received %v, want nothing", got)
	}
}

func TestEmitAll(t *testing.T) {
	hub := newTestHub(t)

	first := &fakeConn{}
	second := &fakeConn{}
	c1 := hub.Connect(first)
	hub.Connect(second)
	hub.Authenticate(c1.ID, "alice")

	sent := hub.EmitAll("taskUpdated", map[string]string{"taskId": "t1"})
	if sent != 2 {
		t.Errorf("EmitAll() = %d, want 2", sent)
	}
	if got := second.events(t); len(got) != 1 {
		t.Errorf("unauthenticated connection events = %v, want one", got)
	}
}

func TestDisconnect(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	client := hub.Connect(conn)
	hub.Authenticate(client.ID, "alice")

	hub.Disconnect(client.ID)
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
	if hub.UserConnectionCount("alice") != 0 {
		t.Errorf("alice still has connections after disconnect")
	}

	if sent := hub.EmitToUser("alice", "taskCreated", nil); sent != 0 {
		t.Errorf("EmitToUser() after disconnect = %d, want 0", sent)
	}

	// Disconnecting twice is harmless.
	hub.Disconnect(client.ID)
}

func TestSendTo(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	client := hub.Connect(conn)

	if err := hub.SendTo(client.ID, "authenticated", map[string]bool{"success": true}); err != nil {
		t.Fatalf("SendTo() error = %v", err)
	}
	if got := conn.events(t); len(got) != 1 || got[0] != "authenticated" {
		t.Errorf("events = %v, want [authenticated]", got)
	}

	if err := hub.SendTo("no-such-conn", "authenticated", nil); err == nil {
		t.Error("SendTo() to unknown connection succeeded, want error")
	}
}

func TestClose(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	client := hub.Connect(conn)
	hub.Authenticate(client.ID, "alice")

	hub.Close()
	if !conn.closed {
		t.Error("connection not closed")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
	if hub.UserConnectionCount("alice") != 0 {
		t.Error("user registry not emptied")
	}
}
