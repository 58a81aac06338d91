package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRotatingWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "codedock.log")

	rw, err := NewRotatingWriter(path, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = rw.Close() }()

	if rw.Path() != path {
		t.Errorf("Path() = %q, want %q", rw.Path(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestRotatingWriter_ResumesExistingSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedock.log")
	if err := os.WriteFile(path, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}

	rw, err := NewRotatingWriter(path, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = rw.Close() }()

	if rw.Size() != 5 {
		t.Errorf("Size() = %d, want 5", rw.Size())
	}
}

func TestRotatingWriter_RotatesPastLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedock.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = rw.Close() }()

	chunk := []byte(strings.Repeat("x", 600*1024))
	for i := 0; i < 3; i++ {
		if _, err := rw.Write(chunk); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected first backup: %v", err)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("expected second backup: %v", err)
	}
	if rw.Size() != int64(len(chunk)) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len(chunk))
	}
}

func TestRotatingWriter_DropsOldestBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedock.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = rw.Close() }()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := rw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
		if err := rw.Rotate(); err != nil {
			t.Fatalf("Rotate failed: %v", err)
		}
	}

	data, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "third" {
		t.Errorf("backup content = %q, want %q", data, "third")
	}
	if _, err := os.Stat(path + ".2"); !os.IsNotExist(err) {
		t.Error("backup beyond MaxBackups should not exist")
	}
}

func TestRotatingWriter_Compression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedock.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 2, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = rw.Close() }()

	if _, err := rw.Write([]byte("compressed line\n")); err != nil {
		t.Fatal(err)
	}
	if err := rw.Rotate(); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	f, err := os.Open(path + ".1.gz")
	if err != nil {
		t.Fatalf("expected gzipped backup: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip: %v", err)
	}
	if string(data) != "compressed line\n" {
		t.Errorf("decompressed = %q", data)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("uncompressed backup should be removed after compression")
	}
}

func TestRotatingWriter_Close(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "codedock.log"), RotationConfig{})
	if err != nil {
		t.Fatal(err)
	}

	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := rw.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close should be a no-op, got %v", err)
	}
}

func TestNewLoggerWithRotation(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLoggerWithRotation(dir, LevelDebug, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewLoggerWithRotation failed: %v", err)
	}
	logger.Debug("rotating logger ready")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "rotating logger ready") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.Compress {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}
