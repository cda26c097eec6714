package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

func TestStores_GetSetDelete(t *testing.T) {
	dir := t.TempDir()
	fileStore, err := NewFileStore(zap.NewNop(), filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	tests := []struct {
		name  string
		store domain.Store
	}{
		{name: "memory", store: NewMemoryStore()},
		{name: "file", store: fileStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := tt.store.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
			}

			if err := tt.store.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			data, ok, err := tt.store.Get(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("Get(k) = ok %v, err %v", ok, err)
			}
			if string(data) != `{"a":1}` {
				t.Errorf("Get(k) = %s, want {\"a\":1}", data)
			}

			if err := tt.store.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := tt.store.Get(ctx, "k"); ok {
				t.Error("key still present after Delete")
			}
			if err := tt.store.Delete(ctx, "k"); err != nil {
				t.Errorf("Delete of missing key returned %v", err)
			}
		})
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	s, err := NewFileStore(zap.NewNop(), path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := SetJSON(ctx, s, KeyDisabledPlayers, []string{"aa:bb"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	reopened, err := NewFileStore(zap.NewNop(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var ids []string
	ok, err := GetJSON(ctx, reopened, KeyDisabledPlayers, &ids)
	if err != nil || !ok {
		t.Fatalf("GetJSON = ok %v, err %v", ok, err)
	}
	if len(ids) != 1 || ids[0] != "aa:bb" {
		t.Errorf("ids = %v, want [aa:bb]", ids)
	}
}

func TestFileStore_RejectsInvalidJSONAndSurvivesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(zap.NewNop(), path)
	if err != nil {
		t.Fatalf("corrupt file should not fail startup: %v", err)
	}
	if err := s.Set(context.Background(), "k", []byte("plain text")); err == nil {
		t.Error("expected error for non-JSON value")
	}
}

func TestGetJSON_DecodeError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte(`"a string"`))

	var n []int
	if _, err := GetJSON(ctx, s, "k", &n); err == nil {
		t.Error("expected decode error")
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		expectErr bool
	}{
		{name: "memory", backend: "memory"},
		{name: "file", backend: "file"},
		{name: "valkey without address", backend: "valkey", expectErr: true},
		{name: "unknown", backend: "sqlite", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.Backend = tt.backend
			cfg.Store.FilePath = filepath.Join(t.TempDir(), "state.json")

			s, err := New(zap.NewNop(), cfg)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil || s == nil {
				t.Fatalf("New = %v, %v", s, err)
			}
		})
	}
}
