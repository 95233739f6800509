package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcdev12/courtside/go/internal/config"
	"github.com/mcdev12/courtside/go/internal/protocol"
)

func TestServerServesSessionOverWebSocket(t *testing.T) {
	cfg := config.NewConfigFromEnv()
	cfg.NATS.URL = ""
	cfg.AllowedOrigins = []string{"*"}

	ctx, cancel := context.WithCancel(context.Background())
	services, err := setupServices(ctx, cfg)
	if err != nil {
		t.Fatalf("setupServices: %v", err)
	}
	var wg sync.WaitGroup
	services.Start(ctx, &wg)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
		services.Close()
	})

	srv := httptest.NewServer(setupServer(cfg, services).Handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "OK" {
		t.Fatalf("health body = %q", body)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The first frame is the phase replay sent on connect.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != string(protocol.EventStateChange) || string(env.Data) != `{"state":"WAITING"}` {
		t.Fatalf("first frame = %s", data)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"joinGame","data":{"nickname":"ada"}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Type == string(protocol.EventPlayerAssigned) {
			if !strings.Contains(string(env.Data), `"slot":"left1"`) {
				t.Fatalf("assigned = %s", env.Data)
			}
			return
		}
	}
}
