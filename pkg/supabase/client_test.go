package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/goals" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "eq.user-1" {
			t.Errorf("user_id = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("apikey = %q", got)
		}
		w.Write([]byte(`[{"id":"g1"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service-key")
	body, err := c.Query(context.Background(), "goals", map[string]interface{}{"user_id": "eq.user-1"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if string(body) != `[{"id":"g1"}]` {
		t.Errorf("Query() body = %s", body)
	}
}

func TestClient_Upsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query().Get("on_conflict"); got != "user_id,pattern_type" {
			t.Errorf("on_conflict = %q", got)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation,resolution=merge-duplicates" {
			t.Errorf("Prefer = %q", got)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if payload["pattern_type"] != "task_velocity" {
			t.Errorf("payload = %v", payload)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service-key")
	_, err := c.Upsert(context.Background(), "user_patterns", map[string]interface{}{"pattern_type": "task_velocity"}, "user_id,pattern_type")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func TestClient_RPC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/rpc/apply_analysis_batch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"p_user_id":"u1"}` {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service-key")
	if _, err := c.RPC(context.Background(), "apply_analysis_batch", map[string]string{"p_user_id": "u1"}); err != nil {
		t.Fatalf("RPC() error = %v", err)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service-key")
	_, err := c.Insert(context.Background(), "analytics_events", map[string]string{})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestClient_VerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		w.Write([]byte(`{"id":"user-1","email":"a@example.com"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service-key")

	user, err := c.VerifyToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q", user.ID)
	}

	_, err = c.VerifyToken(context.Background(), "bad")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("VerifyToken() error = %v, want ErrUnauthorized", err)
	}
}
