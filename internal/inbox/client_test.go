package inbox

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.InboxConfig{WebAppURL: url, APIKey: "test-key"}, zap.NewNop())
}

func TestFetchInbox(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"route": r.URL.Query().Get("route"),
			"since": r.URL.Query().Get("since"),
			"max":   r.URL.Query().Get("max"),
		}
		_ = json.NewEncoder(w).Encode(inboxResponse{
			OK:    true,
			Count: 1,
			Items: []Message{{
				ThreadID:  "t1",
				MessageID: "m1",
				DateMs:    1700000000000,
				FromEmail: "a@x.com",
				BodyText:  "my valve leaks",
			}},
		})
	}))
	defer server.Close()

	items, err := newTestClient(server.URL).FetchInbox(context.Background(), 1699999999999, 25)
	if err != nil {
		t.Fatalf("fetch inbox: %v", err)
	}
	if gotQuery["route"] != "inbox" || gotQuery["since"] != "1699999999999" || gotQuery["max"] != "25" {
		t.Errorf("query = %v", gotQuery)
	}
	if len(items) != 1 || items[0].MessageID != "m1" {
		t.Fatalf("items = %+v", items)
	}
}

func TestFetchInbox_UpstreamErrorFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(inboxResponse{OK: false, Error: "quota"})
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchInbox(context.Background(), 0, 25); err == nil {
		t.Fatalf("ok=false response did not error")
	}
}

func TestReply_PostsKeyedJSONBody(t *testing.T) {
	var body map[string]any
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_ = json.NewEncoder(w).Encode(postResponse{OK: true})
	}))
	defer server.Close()

	err := newTestClient(server.URL).Reply(context.Background(), "t1", "on the way", []OutgoingAttachment{
		{Name: "label.pdf", ContentType: "application/pdf", Base64: "aGk="},
	})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if contentType != "text/plain;charset=utf-8" {
		t.Errorf("content type = %q", contentType)
	}
	if body["key"] != "test-key" || body["threadId"] != "t1" || body["text"] != "on the way" {
		t.Errorf("body = %v", body)
	}
	atts, ok := body["attachments"].([]any)
	if !ok || len(atts) != 1 {
		t.Errorf("attachments = %v", body["attachments"])
	}
}

func TestFetchThread_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>sign in required</html>"))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchThread(context.Background(), "t1"); err == nil {
		t.Fatalf("non-JSON response did not error")
	}
}
