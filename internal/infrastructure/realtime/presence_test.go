package realtime

import "testing"

func TestRegistryMultipleConnections(t *testing.T) {
	r := NewRegistry()

	r.Register("alice", "conn-1")
	r.Register("alice", "conn-2")

	if !r.IsOnline("alice") {
		t.Fatal("alice should be online")
	}
	if got := len(r.ConnectionsFor("alice")); got != 2 {
		t.Fatalf("connections = %d, want 2", got)
	}

	// Dropping one device keeps the user online.
	r.Unregister("conn-1")
	if !r.IsOnline("alice") {
		t.Fatal("alice went offline with a live connection remaining")
	}

	r.Unregister("conn-2")
	if r.IsOnline("alice") {
		t.Fatal("alice still online after last connection dropped")
	}
	if r.ConnectionsFor("alice") != nil {
		t.Error("expected nil connections for offline user")
	}
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := NewRegistry()
	r.Unregister("ghost")

	if r.IsOnline("anyone") {
		t.Fatal("empty registry reported someone online")
	}
}

func TestRegistryIsolatesUsers(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "a-1")
	r.Register("bob", "b-1")

	r.Unregister("a-1")
	if r.IsOnline("alice") {
		t.Error("alice should be offline")
	}
	if !r.IsOnline("bob") {
		t.Error("bob should remain online")
	}
}
