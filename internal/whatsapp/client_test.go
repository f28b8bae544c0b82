package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendPostsCloudAPIPayload(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode send body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.X"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "12345", "secret-token", nil)
	if err := c.Send(context.Background(), "2348012345678", "hello there"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/12345/messages" {
		t.Errorf("expected path /12345/messages, got %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.MessagingProduct != "whatsapp" || gotBody.Type != "text" {
		t.Errorf("unexpected envelope: %+v", gotBody)
	}
	if gotBody.To != "2348012345678" || gotBody.Text.Body != "hello there" {
		t.Errorf("unexpected recipient/body: %+v", gotBody)
	}
}

func TestSendReturnsErrorOnAPIFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "12345", "bad-token", nil)
	if err := c.Send(context.Background(), "234", "hi"); err == nil {
		t.Fatal("expected error on 401 response")
	}
}
