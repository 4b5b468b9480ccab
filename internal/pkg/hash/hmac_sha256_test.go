package hash

import (
	"fmt"
	"testing"
)

func TestHMACSHA256(t *testing.T) {
	hasher := NewHMACSHA256("test-secret")

	t.Run("HashIsDeterministic", func(t *testing.T) {
		a, err := hasher.Hash("+15550001111482913")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := hasher.Hash("+15550001111482913")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(a) != string(b) {
			t.Fatalf("expected identical digests for identical input")
		}
	})

	t.Run("VerifyMatch", func(t *testing.T) {
		digest, err := hasher.Hash("+15550001111482913")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !hasher.Verify(string(digest), "+15550001111482913") {
			t.Fatalf("expected digest to verify")
		}
	})

	t.Run("VerifyMismatch", func(t *testing.T) {
		digest, err := hasher.Hash("+15550001111482913")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hasher.Verify(string(digest), "+15550001111000000") {
			t.Fatalf("expected mismatched input to fail verification")
		}
	})

	t.Run("DigestBindsExactlyOneCode", func(t *testing.T) {
		digest, err := hasher.Hash("+15550001111482913")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Scan a slice of the 6-digit space around the issued code; only
		// the issued code may verify against the stored digest.
		matches := 0
		for i := 482000; i < 483000; i++ {
			code := fmt.Sprintf("%06d", i)
			if hasher.Verify(string(digest), "+15550001111"+code) {
				matches++
				if code != "482913" {
					t.Fatalf("digest verified against foreign code %s", code)
				}
			}
		}
		if matches != 1 {
			t.Fatalf("expected exactly one matching code, got %d", matches)
		}
	})

	t.Run("SecretChangesDigest", func(t *testing.T) {
		other := NewHMACSHA256("other-secret")
		digest, err := hasher.Hash("+15550001111482913")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if other.Verify(string(digest), "+15550001111482913") {
			t.Fatalf("expected digest under another secret to fail verification")
		}
	})
}
