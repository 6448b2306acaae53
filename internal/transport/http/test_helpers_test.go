package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
	"github.com/vovakirdan/wirechat-relay/internal/uploads"
)

const testAdminCode = "letmein"

type testEnv struct {
	server    *httptest.Server
	hub       *core.Hub
	clock     *clock.Mock
	scheduler *uploads.Scheduler
	cfg       config.Config
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.AdminCode = testAdminCode
	cfg.UploadDir = t.TempDir()
	cfg.PublicDir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}

	verifier, err := auth.NewCodeVerifier(cfg.AdminCode)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	hub, err := core.NewHub(core.HubConfig{
		Rooms:             cfg.Rooms,
		DefaultRoom:       cfg.DefaultRoom,
		HistoryLimit:      cfg.HistoryLimit,
		RateLimitInterval: cfg.RateLimitInterval,
		Clock:             clk,
	}, verifier, nil)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})

	storage, err := uploads.NewStorage(cfg.UploadDir)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	scheduler := uploads.NewScheduler(clk, cfg.UploadTTL, nil, nil)
	t.Cleanup(scheduler.Stop)

	server := NewServer(hub, Files{Storage: storage, Scheduler: scheduler}, &cfg, nil)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, hub: hub, clock: clk, scheduler: scheduler, cfg: cfg}
}

type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func read(t *testing.T, conn *websocket.Conn) wireOutbound {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var out wireOutbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

func readEvent(t *testing.T, conn *websocket.Conn, event string, into any) {
	t.Helper()

	out := read(t, conn)
	if out.Type != proto.OutboundTypeEvent || out.Event != event {
		t.Fatalf("expected event %s, got type=%s event=%s error=%+v", event, out.Type, out.Event, out.Error)
	}
	if into != nil {
		if err := json.Unmarshal(out.Data, into); err != nil {
			t.Fatalf("unmarshal %s: %v", event, err)
		}
	}
}

func postJSON(t *testing.T, url string, body any) *stdhttp.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := stdhttp.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}
