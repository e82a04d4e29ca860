package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	_ "gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
)

func TestStoreUploadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20250617120000-0h-oper-fc.grib2")
	content := []byte("grib payload")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	bucket := memblob.OpenBucket(nil)
	a := New(bucket)
	defer a.Close()

	ctx := context.Background()
	key := "20250617/20250617120000-0h-oper-fc.grib2"
	if err := a.Store(ctx, key, path); err != nil {
		t.Fatalf("Store: %v", err)
	}

	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestStoreOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.grib2")

	bucket := memblob.OpenBucket(nil)
	a := New(bucket)
	defer a.Close()

	ctx := context.Background()
	for _, content := range []string{"first", "second"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if err := a.Store(ctx, "k", path); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	got, err := bucket.ReadAll(ctx, "k")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}
}

func TestStoreMissingLocalFile(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	a := New(bucket)
	defer a.Close()

	if err := a.Store(context.Background(), "k", filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing local file")
	}
}

func TestOpenFileBucket(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.grib2")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	bucketDir := t.TempDir()
	a, err := Open(context.Background(), "file://"+bucketDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if err := a.Store(context.Background(), "20250617/src.grib2", src); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(bucketDir, "20250617", "src.grib2"))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
}
