package whatsapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "token" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("To"); got != "whatsapp:+2348001" {
			t.Errorf("To = %q", got)
		}
		if got := r.PostForm.Get("From"); got != "whatsapp:+14155238886" {
			t.Errorf("From = %q", got)
		}
		if got := r.PostForm.Get("Body"); got != "hello" {
			t.Errorf("Body = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "whatsapp:+14155238886",
		BaseURL:    srv.URL,
	})

	msg, err := c.SendText(context.Background(), "whatsapp:+2348001", "hello")
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if msg.SID != "SM123" || msg.Status != "queued" {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":20003,"message":"Authenticate"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{AccountSID: "AC123", AuthToken: "bad", From: "whatsapp:+1", BaseURL: srv.URL})

	_, err := c.SendText(context.Background(), "whatsapp:+2348001", "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != 20003 {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestSendTextGarbageErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(Config{AccountSID: "AC123", AuthToken: "t", From: "whatsapp:+1", BaseURL: srv.URL})

	_, err := c.SendText(context.Background(), "whatsapp:+2348001", "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Code != 0 {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}
