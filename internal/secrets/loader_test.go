package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadInlineValue(t *testing.T) {
	secret, err := Load("api key", "", "  s3cret  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "s3cret" {
		t.Fatalf("secret = %q, want trimmed value", secret)
	}
}

func TestLoadFileTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	secret, err := Load("api key", path, "inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-file" {
		t.Fatalf("secret = %q, want file content", secret)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("   "), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load("api key", path, ""); err == nil {
		t.Fatal("expected error for empty secret file")
	}
}

func TestLoadNothingConfigured(t *testing.T) {
	if _, err := Load("api key", "", ""); err == nil {
		t.Fatal("expected error when nothing is configured")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("api key", "/does/not/exist", ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
