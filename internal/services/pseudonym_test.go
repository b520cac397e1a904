package services

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"
)

func TestPseudonymIDDeterministic(t *testing.T) {
	a, err := PseudonymID("12.345.678-5", "pepper")
	if err != nil {
		t.Fatalf("PseudonymID error: %v", err)
	}
	b, err := PseudonymID("12.345.678-5", "pepper")
	if err != nil {
		t.Fatalf("PseudonymID error: %v", err)
	}
	if a != b {
		t.Fatalf("digests differ: %q vs %q", a, b)
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(a) {
		t.Fatalf("digest is not 64 lowercase hex chars: %q", a)
	}
}

func TestPseudonymIDNormalizesFirst(t *testing.T) {
	a, _ := PseudonymID("12.345.678-5", "pepper")
	b, _ := PseudonymID("123456785", "pepper")
	if a != b {
		t.Fatalf("separators changed the digest: %q vs %q", a, b)
	}
	sum := sha256.Sum256([]byte("123456785pepper"))
	if want := hex.EncodeToString(sum[:]); a != want {
		t.Fatalf("digest %q, want sha256(normalized+salt)=%q", a, want)
	}
}

func TestPseudonymIDSaltSensitive(t *testing.T) {
	a, _ := PseudonymID("12.345.678-5", "pepper")
	b, _ := PseudonymID("12.345.678-5", "other")
	if a == b {
		t.Fatalf("different salts produced the same digest")
	}
}

func TestPseudonymIDRefusesEmptySalt(t *testing.T) {
	for _, salt := range []string{"", "   ", "\t"} {
		if _, err := PseudonymID("12.345.678-5", salt); err == nil {
			t.Fatalf("expected error for salt %q", salt)
		} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorSaltUnconfigured {
			t.Fatalf("expected salt_unconfigured, got %v", err)
		}
	}
}
