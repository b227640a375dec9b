package mqtt

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// listenWebsocket serves MQTT over WebSocket and hands each upgraded
// connection to the test as a net.Conn.
func listenWebsocket(t *testing.T) (string, <-chan net.Conn) {
	t.Helper()

	accepted := make(chan net.Conn, 1)
	upgrader := websocket.Upgrader{Subprotocols: []string{"mqtt"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if ws.Subprotocol() != "mqtt" {
			t.Errorf("negotiated subprotocol %q, want mqtt", ws.Subprotocol())
		}
		accepted <- &wsConn{ws: ws}
	}))
	t.Cleanup(srv.Close)

	return "ws://" + strings.TrimPrefix(srv.URL, "http://") + "/mqtt", accepted
}

func TestWebsocketReadSpansMessages(t *testing.T) {
	brokerURL, accepted := listenWebsocket(t)
	u, err := url.Parse(brokerURL)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), packetWait)
	defer cancel()
	client, err := dialWebsocket(ctx, u, nil)
	if err != nil {
		t.Fatalf("dialWebsocket: %v", err)
	}
	defer client.Close()

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(packetWait):
		t.Fatal("server never accepted")
	}
	defer server.Close()

	// One MQTT packet may arrive split over several binary messages.
	for _, part := range []string{"ab", "cde"} {
		if _, err := server.Write([]byte(part)); err != nil {
			t.Fatalf("server write: %v", err)
		}
	}

	buf := make([]byte, 5)
	if _, err := io.ReadFull(client, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf) != "abcde" {
		t.Fatalf("read %q, want %q", buf, "abcde")
	}

	// Short reads keep the remainder of a message for the next call.
	if _, err := server.Write([]byte("xyz")); err != nil {
		t.Fatalf("server write: %v", err)
	}
	small := make([]byte, 2)
	if n, err := client.Read(small); err != nil || string(small[:n]) != "xy" {
		t.Fatalf("first read = %q, %v", small[:n], err)
	}
	if n, err := client.Read(small); err != nil || string(small[:n]) != "z" {
		t.Fatalf("second read = %q, %v", small[:n], err)
	}
}

func TestWebsocketWriteIsBinary(t *testing.T) {
	u, err := url.Parse("ws://placeholder/mqtt")
	if err != nil {
		t.Fatal(err)
	}

	received := make(chan int, 1)
	upgrader := websocket.Upgrader{Subprotocols: []string{"mqtt"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		mt, _, err := ws.ReadMessage()
		if err == nil {
			received <- mt
		}
	}))
	defer srv.Close()
	u.Host = strings.TrimPrefix(srv.URL, "http://")

	ctx, cancel := context.WithTimeout(context.Background(), packetWait)
	defer cancel()
	client, err := dialWebsocket(ctx, u, nil)
	if err != nil {
		t.Fatalf("dialWebsocket: %v", err)
	}
	defer client.Close()

	if n, err := client.Write([]byte{0xC0, 0x00}); err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}

	select {
	case mt := <-received:
		if mt != websocket.BinaryMessage {
			t.Fatalf("message type = %d, want binary", mt)
		}
	case <-time.After(packetWait):
		t.Fatal("server received nothing")
	}
}

func TestRetainedMessageOverWebsocket(t *testing.T) {
	brokerURL, accepted := listenWebsocket(t)
	rec := newRecorder()
	conn, srv := connect(t, brokerURL, accepted, rec.handlers())

	if err := subscribe(t, conn, srv, 0x00); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := rec.waitMessage(t); got != testPayload {
		t.Fatalf("payload = %q, want %q", got, testPayload)
	}
}
