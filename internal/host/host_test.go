package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/kiesman99/spritepack/internal/logging"
)

type recorder struct {
	paths []string
	err   error
}

func (r *recorder) Notify(_ context.Context, path string) error {
	r.paths = append(r.paths, path)
	return r.err
}

func TestWriteAndRead(t *testing.T) {
	rec := &recorder{}
	h := New(afero.NewMemMapFs(), rec)
	path := filepath.Join("out", "nested", "sheet.json")

	if err := h.Write(context.Background(), path, []byte("{}")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := h.Read(path)
	if err != nil || string(data) != "{}" {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if ok, _ := h.Exists(path); !ok {
		t.Error("Exists should report the written file")
	}
	if ok, _ := h.IsDir(filepath.Join("out", "nested")); !ok {
		t.Error("parent directory should have been created")
	}
	if !reflect.DeepEqual(rec.paths, []string{path}) {
		t.Errorf("notified %v", rec.paths)
	}
}

func TestWrite_NotificationFailureIsOnlyLogged(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.New(&buf, log.DebugLevel))
	h := New(afero.NewMemMapFs(), &recorder{err: errors.New("index offline")})

	if err := h.Write(ctx, "a.png", []byte{1}); err != nil {
		t.Fatalf("Write should succeed, got %v", err)
	}
	if !strings.Contains(buf.String(), "index offline") {
		t.Errorf("expected warning in log, got %q", buf.String())
	}
}

func TestRead_Missing(t *testing.T) {
	h := New(afero.NewMemMapFs(), nil)
	if _, err := h.Read("nope.png"); err == nil {
		t.Error("expected error for missing file")
	}
	if ok, err := h.IsDir("nope"); ok || err != nil {
		t.Errorf("IsDir(missing) = %v, %v", ok, err)
	}
}

func TestList(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"b.png", "a.png", ".hidden.png", "a.png.meta", "notes.txt", "sub/c.png"} {
		if err := afero.WriteFile(fs, filepath.Join("in", name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := New(fs, nil).List("in")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{
		filepath.Join("in", "a.png"),
		filepath.Join("in", "b.png"),
		filepath.Join("in", "notes.txt"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestHook(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewHook(srv.URL).Notify(context.Background(), "out/sheet.png"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if got["path"] != "out/sheet.png" {
		t.Errorf("posted %v", got)
	}
}

func TestHook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewHook(srv.URL).Notify(context.Background(), "x"); err == nil {
		t.Error("expected error for 500 response")
	}
}
