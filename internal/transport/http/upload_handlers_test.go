package http

import (
	"encoding/json"
	"io"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
	"github.com/vovakirdan/wirechat-relay/internal/uploads"
)

func upload(t *testing.T, env *testEnv, fields map[string]string, fileName string, content []byte) (*stdhttp.Response, UploadResponse) {
	t.Helper()

	body, contentType := multipartBody(t, fields, fileName, content)
	resp, err := stdhttp.Post(env.server.URL+"/upload", contentType, body)
	if err != nil {
		t.Fatalf("post upload: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return resp, out
}

func TestUploadSharesFileWithRoom(t *testing.T) {
	env := startTestServer(t, nil)
	conn := env.dial(t)
	readEvent(t, conn, proto.EventMessageHistory, nil)

	resp, out := upload(t, env, map[string]string{"room": "General", "username": "Alice"}, "cat.png", []byte("png"))
	if resp.StatusCode != stdhttp.StatusOK || !out.Success {
		t.Fatalf("upload failed: status=%d body=%+v", resp.StatusCode, out)
	}
	if !uploads.IsPublicLink(out.FilePath) || !strings.HasSuffix(out.FilePath, ".png") {
		t.Fatalf("unexpected file path %q", out.FilePath)
	}

	var msg proto.EventMessage
	readEvent(t, conn, proto.EventChatMessage, &msg)
	if msg.Name != "Alice" || msg.Attachment == nil {
		t.Fatalf("expected attachment message, got %+v", msg)
	}
	if msg.Attachment.Link != out.FilePath || msg.Attachment.Label != "cat.png" {
		t.Fatalf("unexpected attachment: %+v", msg.Attachment)
	}

	served, err := stdhttp.Get(env.server.URL + out.FilePath)
	if err != nil {
		t.Fatalf("get upload: %v", err)
	}
	defer served.Body.Close()
	data, _ := io.ReadAll(served.Body)
	if served.StatusCode != stdhttp.StatusOK || string(data) != "png" {
		t.Fatalf("served status=%d body=%q", served.StatusCode, data)
	}
}

func TestUploadBypassesRateLimit(t *testing.T) {
	env := startTestServer(t, nil)
	conn := env.dial(t)
	readEvent(t, conn, proto.EventMessageHistory, nil)

	send(t, conn, proto.InboundTypeChatMessage, proto.ChatData{Room: "General", Name: "Alice", Text: "hello"})
	readEvent(t, conn, proto.EventChatMessage, nil)

	resp, out := upload(t, env, map[string]string{"room": "General", "username": "Alice"}, "doc.txt", []byte("x"))
	if resp.StatusCode != stdhttp.StatusOK || !out.Success {
		t.Fatalf("upload failed: status=%d body=%+v", resp.StatusCode, out)
	}
	var msg proto.EventMessage
	readEvent(t, conn, proto.EventChatMessage, &msg)
	if msg.Attachment == nil {
		t.Fatalf("expected attachment, got %+v", msg)
	}
}

func TestUploadDeletedAfterTTL(t *testing.T) {
	env := startTestServer(t, nil)

	_, out := upload(t, env, map[string]string{"room": "Random", "username": "Alice"}, "a.bin", []byte("x"))
	path := filepath.Join(env.cfg.UploadDir, strings.TrimPrefix(out.FilePath, uploads.PublicPrefix))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	env.clock.Add(env.cfg.UploadTTL)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("upload %s not deleted after TTL", path)
}

func TestUploadRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		fileName string
	}{
		{"unknown room", map[string]string{"room": "Nowhere", "username": "Alice"}, "a.txt"},
		{"missing room", map[string]string{"username": "Alice"}, "a.txt"},
		{"missing username", map[string]string{"room": "General"}, "a.txt"},
		{"missing file", map[string]string{"room": "General", "username": "Alice"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := startTestServer(t, nil)

			resp, out := upload(t, env, tt.fields, tt.fileName, []byte("x"))
			if resp.StatusCode != stdhttp.StatusBadRequest || out.Success {
				t.Fatalf("status=%d body=%+v, want 400", resp.StatusCode, out)
			}
			if n := env.scheduler.Pending(); n != 0 {
				t.Fatalf("pending deletions = %d, want 0", n)
			}
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	env := startTestServer(t, func(cfg *config.Config) {
		cfg.MaxUploadBytes = 16
	})

	big := make([]byte, 128<<10)
	resp, out := upload(t, env, map[string]string{"room": "General", "username": "Alice"}, "big.bin", big)
	if resp.StatusCode != stdhttp.StatusRequestEntityTooLarge || out.Success {
		t.Fatalf("status=%d body=%+v, want 413", resp.StatusCode, out)
	}
}
