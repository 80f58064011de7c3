package common

import (
	"strings"
	"testing"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestUploadName(t *testing.T) {
	name := UploadName("images", "Photo.JPG")
	if !strings.HasPrefix(name, "images-") || !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("unexpected upload name %q", name)
	}
	if UploadName("images", "a.png") == UploadName("images", "a.png") {
		t.Fatalf("upload names must be unique")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "secret123") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "secret124") {
		t.Fatalf("expected mismatch")
	}
}

func TestIsEmptyOrNA(t *testing.T) {
	for _, s := range []string{"", "  ", "N/A", "n/a"} {
		if !IsEmptyOrNA(s) {
			t.Fatalf("%q should be empty", s)
		}
	}
	if IsEmptyOrNA("x") {
		t.Fatalf("x is not empty")
	}
}
