package util

import (
	"strings"
	"testing"
)

func TestHashOwnerKeyStable(t *testing.T) {
	a := HashOwnerKey("emp-123")
	b := HashOwnerKey("emp-123")
	if a != b {
		t.Fatalf("expected stable hash, got %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestHashOwnerKeyDistinct(t *testing.T) {
	if HashOwnerKey("emp-1") == HashOwnerKey("emp-2") {
		t.Fatal("expected distinct hashes for distinct ids")
	}
}

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("dir/evil\\name.pdf")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if strings.ContainsAny(got, "/\\") {
		t.Fatalf("expected separators removed, got %q", got)
	}

	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatal("expected traversal rejection")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatal("expected empty name rejection")
	}
}
