package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewWebhookPayloadMapsFields(t *testing.T) {
	p := NewWebhookPayload("berlin07", "jane@example.com", "+15550100", "Berlin", "10115",
		"Jane", "Doe", "https://cdn.example.com/img.jpeg", 24, "Female", true)

	if p.Address != "Berlin, 10115" {
		t.Errorf("address = %q", p.Address)
	}
	if p.Age != "24" {
		t.Errorf("age = %q", p.Age)
	}
	if p.Gender != "F" {
		t.Errorf("gender = %q", p.Gender)
	}
	if p.OptIn != "true" {
		t.Errorf("opt_in = %q", p.OptIn)
	}
	if p.AnalyticsID != "" {
		t.Errorf("analyticsid = %q", p.AnalyticsID)
	}

	p = NewWebhookPayload("c", "e", "p", "", "", "", "", "", 0, "Male", false)
	if p.Gender != "M" {
		t.Errorf("gender = %q", p.Gender)
	}
	if p.OptIn != "false" {
		t.Errorf("opt_in = %q", p.OptIn)
	}
}

func TestWebhookSenderSuccess(t *testing.T) {
	var gotUA, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	result := NewWebhookSender().Send(context.Background(), srv.URL, WebhookPayload{Campaign: "x"})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if gotUA != "ModelScanner/1.0" {
		t.Errorf("user-agent = %q", gotUA)
	}
	if gotCT != "application/json" {
		t.Errorf("content-type = %q", gotCT)
	}
}

func TestWebhookSenderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	result := NewWebhookSender().Send(context.Background(), srv.URL, WebhookPayload{})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if result.Body != "upstream down" {
		t.Fatalf("body = %q", result.Body)
	}
}

func TestWebhookSenderConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	result := NewWebhookSender().Send(context.Background(), srv.URL, WebhookPayload{})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.StatusCode != 0 {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if !strings.HasPrefix(result.Body, "Connection Error:") && !strings.HasPrefix(result.Body, "Unexpected Error:") {
		t.Fatalf("unexpected diagnostic: %q", result.Body)
	}
}

func TestWebhookSenderTruncatesLongBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	result := NewWebhookSender().Send(context.Background(), srv.URL, WebhookPayload{})

	if len(result.Body) != maxDiagnosticLen {
		t.Fatalf("body length = %d, want %d", len(result.Body), maxDiagnosticLen)
	}
}
