package kvstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/an0763229796-cpu/AlphaDrop/internal/apperr"
)

// fakeRemote serves the Upstash-style get/set REST surface over a map.
func fakeRemote(t *testing.T, token string) (*httptest.Server, map[string]string) {
	t.Helper()
	var mu sync.Mutex
	data := make(map[string]string)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet && len(r.URL.Path) > len("/get/"):
			key := r.URL.Path[len("/get/"):]
			w.Header().Set("Content-Type", "application/json")
			if v, ok := data[key]; ok {
				_, _ = w.Write([]byte(`{"result":` + quoteJSON(v) + `}`))
			} else {
				_, _ = w.Write([]byte(`{"result":null}`))
			}
		case r.Method == http.MethodPost && len(r.URL.Path) > len("/set/"):
			key := r.URL.Path[len("/set/"):]
			body, _ := io.ReadAll(r.Body)
			data[key] = string(body)
			_, _ = w.Write([]byte(`{"result":"OK"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, data
}

func quoteJSON(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		default:
			out = append(out, s[i])
		}
	}
	return string(append(out, '"'))
}

func TestRemote_RoundTrip(t *testing.T) {
	srv, _ := fakeRemote(t, "secret")
	store := NewRemote(srv.URL, "secret")
	ctx := context.Background()

	if err := store.Set(ctx, "projects", []byte(`[{"name":"Monad"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "projects")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"name":"Monad"}]` {
		t.Errorf("value = %q", got)
	}
}

func TestRemote_MissingKey(t *testing.T) {
	srv, _ := fakeRemote(t, "secret")
	store := NewRemote(srv.URL, "secret")

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemote_BadToken(t *testing.T) {
	srv, _ := fakeRemote(t, "secret")
	store := NewRemote(srv.URL, "wrong")

	if _, err := store.Get(context.Background(), "k"); err == nil {
		t.Error("expected error with wrong token")
	}
	if err := store.Set(context.Background(), "k", []byte("v")); err == nil {
		t.Error("expected error with wrong token")
	}
}
