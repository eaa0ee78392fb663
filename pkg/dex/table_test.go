package dex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTableResolveMethod(t *testing.T) {
	table := NewTable([]Method{
		{AccessFlags: AccStatic | AccNative, Class: "com/example/Native", Name: "add", Shorty: "III"},
		{AccessFlags: AccNative, Class: "com/example/Native", Name: "get", Shorty: "LL"},
	})

	t.Run("resolves by index", func(t *testing.T) {
		m, err := table.ResolveMethod(0)
		if err != nil {
			t.Fatalf("ResolveMethod(0): %v", err)
		}
		if m.Name != "add" {
			t.Errorf("name: got %q, want %q", m.Name, "add")
		}
		if m.Index != 0 {
			t.Errorf("index: got %d, want 0", m.Index)
		}
		if !m.IsStatic() || !m.IsNative() {
			t.Errorf("flags: IsStatic=%v IsNative=%v, want true true", m.IsStatic(), m.IsNative())
		}
	})

	t.Run("instance method flags", func(t *testing.T) {
		m, err := table.ResolveMethod(1)
		if err != nil {
			t.Fatalf("ResolveMethod(1): %v", err)
		}
		if m.IsStatic() {
			t.Error("IsStatic: got true, want false")
		}
		if m.FullName() != "com/example/Native.get" {
			t.Errorf("FullName: got %q", m.FullName())
		}
	})

	t.Run("out of range index", func(t *testing.T) {
		_, err := table.ResolveMethod(99)
		if err == nil {
			t.Fatal("ResolveMethod(99): expected error, got nil")
		}
		var ue *UnresolvedMethodError
		if !errors.As(err, &ue) {
			t.Fatalf("error type: got %T, want *UnresolvedMethodError", err)
		}
		if ue.Index != 99 {
			t.Errorf("error index: got %d, want 99", ue.Index)
		}
	})

	t.Run("signature parses shorty", func(t *testing.T) {
		sig, err := table.Signature(1)
		if err != nil {
			t.Fatalf("Signature(1): %v", err)
		}
		if sig.Ret != KindRef || len(sig.Args) != 1 || sig.Args[0] != KindRef {
			t.Errorf("signature: got ret=%v args=%v", sig.Ret, sig.Args)
		}
	})

	t.Run("shorty lookup", func(t *testing.T) {
		s, err := table.Shorty(0)
		if err != nil {
			t.Fatalf("Shorty(0): %v", err)
		}
		if s != "III" {
			t.Errorf("shorty: got %q, want %q", s, "III")
		}
	})
}

func TestLoadTable(t *testing.T) {
	writeManifest := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "methods.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing manifest: %v", err)
		}
		return path
	}

	t.Run("loads classes and methods", func(t *testing.T) {
		path := writeManifest(t, `
classes:
  - name: com/example/Native
    methods:
      - name: add
        shorty: III
        flags: [public, static, native]
      - name: get
        shorty: LL
        flags: [public, native]
`)
		table, err := LoadTable(path)
		if err != nil {
			t.Fatalf("LoadTable: %v", err)
		}
		if table.NumMethods() != 2 {
			t.Fatalf("NumMethods: got %d, want 2", table.NumMethods())
		}
		m, err := table.ResolveMethod(0)
		if err != nil {
			t.Fatalf("ResolveMethod(0): %v", err)
		}
		if !m.IsStatic() || !m.IsNative() {
			t.Errorf("flags: IsStatic=%v IsNative=%v, want true true", m.IsStatic(), m.IsNative())
		}
		if m.Class != "com/example/Native" {
			t.Errorf("class: got %q", m.Class)
		}
	})

	t.Run("rejects unknown flag", func(t *testing.T) {
		path := writeManifest(t, `
classes:
  - name: C
    methods:
      - name: m
        shorty: V
        flags: [synchronized]
`)
		if _, err := LoadTable(path); err == nil {
			t.Error("expected error for unknown flag, got nil")
		}
	})

	t.Run("rejects invalid shorty", func(t *testing.T) {
		path := writeManifest(t, `
classes:
  - name: C
    methods:
      - name: m
        shorty: IQ
        flags: [native]
`)
		if _, err := LoadTable(path); err == nil {
			t.Error("expected error for invalid shorty, got nil")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error for missing file, got nil")
		}
	})
}
