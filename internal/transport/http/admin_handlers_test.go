package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/vovakirdan/wirechat-relay/internal/config"
)

func TestVerifyAdmin(t *testing.T) {
	tests := []struct {
		name       string
		req        VerifyAdminRequest
		wantStatus int
		wantAdmin  bool
	}{
		{"correct code", VerifyAdminRequest{Code: testAdminCode, Username: "Bob"}, stdhttp.StatusOK, true},
		{"wrong code", VerifyAdminRequest{Code: "nope", Username: "Bob"}, stdhttp.StatusUnauthorized, false},
		{"empty code", VerifyAdminRequest{Code: "", Username: "Bob"}, stdhttp.StatusUnauthorized, false},
		{"missing username", VerifyAdminRequest{Code: testAdminCode}, stdhttp.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := startTestServer(t, nil)

			resp := postJSON(t, env.server.URL+"/verify-admin", tt.req)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body VerifyAdminResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success != tt.wantAdmin {
				t.Fatalf("success = %v, want %v", body.Success, tt.wantAdmin)
			}

			isAdmin, err := env.hub.IsAdmin(context.Background(), "Bob")
			if err != nil {
				t.Fatalf("is admin: %v", err)
			}
			if isAdmin != tt.wantAdmin {
				t.Fatalf("IsAdmin = %v, want %v", isAdmin, tt.wantAdmin)
			}
		})
	}
}

func TestVerifyAdminMalformedBody(t *testing.T) {
	env := startTestServer(t, nil)

	resp, err := stdhttp.Post(env.server.URL+"/verify-admin", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestVerifyAdminDisabledWithoutCode(t *testing.T) {
	env := startTestServer(t, func(cfg *config.Config) { cfg.AdminCode = "" })

	resp := postJSON(t, env.server.URL+"/verify-admin", VerifyAdminRequest{Code: "", Username: "Bob"})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
