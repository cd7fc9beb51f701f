package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialConnection stands up a websocket echo-sink server and returns a started
// Connection dialed against it.
func dialConnection(t *testing.T) *Connection {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	conn := NewConnection("alice", ws)
	conn.Start()
	return conn
}

func TestSendAfterCloseFails(t *testing.T) {
	conn := dialConnection(t)
	conn.Close(websocket.CloseNormalClosure, "done")

	// Well past the mailbox capacity; every attempt must fail cleanly.
	for i := 0; i < 512; i++ {
		if err := conn.Send([]byte("late frame")); err == nil {
			t.Fatal("Send succeeded after Close")
		}
	}
}

func TestConcurrentSendAndClose(t *testing.T) {
	conn := dialConnection(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = conn.Send([]byte("payload"))
			}
		}()
	}
	conn.Close(websocket.CloseGoingAway, "shutting down")
	wg.Wait()

	if err := conn.Send([]byte("after")); err == nil {
		t.Fatal("Send succeeded after Close")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn := dialConnection(t)
	conn.Close(websocket.CloseNormalClosure, "first")
	conn.Close(websocket.CloseNormalClosure, "second")
}
