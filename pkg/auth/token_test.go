package auth

import (
	"strings"
	"testing"
	"time"

	"wikid/pkg/config"
	"wikid/pkg/logger"
)

func setKeys(t *testing.T, ttl time.Duration, keys ...string) {
	t.Helper()
	logger.Init("error")
	config.SetRuntime(&config.RuntimeConfig{SigningKeys: keys, TokenTTL: ttl})
	t.Cleanup(func() { config.SetRuntime(nil) })
}

func TestTokenSignVerify(t *testing.T) {
	setKeys(t, 0, "k1")

	signed, err := NewToken("alice").Signed()
	if err != nil {
		t.Fatalf("Signed: %v", err)
	}
	tok, ok := VerifyToken(signed)
	if !ok {
		t.Fatal("token should verify")
	}
	if tok.Username != "alice" {
		t.Fatalf("username = %q", tok.Username)
	}
}

func TestTokenKeyRotation(t *testing.T) {
	setKeys(t, 0, "old")
	signed, err := NewToken("alice").Signed()
	if err != nil {
		t.Fatalf("Signed: %v", err)
	}

	// new first key signs; the old key still verifies
	setKeys(t, 0, "new", "old")
	if _, ok := VerifyToken(signed); !ok {
		t.Fatal("token signed with a rotated-out key should still verify")
	}

	setKeys(t, 0, "new")
	if _, ok := VerifyToken(signed); ok {
		t.Fatal("token should fail once its key is gone")
	}
}

func TestTokenTampered(t *testing.T) {
	setKeys(t, 0, "k1")
	signed, err := NewToken("alice").Signed()
	if err != nil {
		t.Fatalf("Signed: %v", err)
	}

	payload, sig, _ := strings.Cut(signed, ".")
	other, err := NewToken("mallory").Signed()
	if err != nil {
		t.Fatalf("Signed: %v", err)
	}
	otherPayload, _, _ := strings.Cut(other, ".")
	if _, ok := VerifyToken(otherPayload + "." + sig); ok {
		t.Fatal("swapped payload must not verify")
	}
	if _, ok := VerifyToken(payload); ok {
		t.Fatal("token without signature must not verify")
	}
	if _, ok := VerifyToken("!!not-base58!!." + sig); ok {
		t.Fatal("malformed payload must not verify")
	}
}

func TestTokenTTL(t *testing.T) {
	setKeys(t, time.Hour, "k1")
	fresh, err := NewToken("alice").Signed()
	if err != nil {
		t.Fatalf("Signed: %v", err)
	}
	if _, ok := VerifyToken(fresh); !ok {
		t.Fatal("fresh token should verify within TTL")
	}

	stale := Token{Username: "alice", IssuedAt: time.Now().Add(-2 * time.Hour).Unix()}
	signed, err := stale.Signed()
	if err != nil {
		t.Fatalf("Signed: %v", err)
	}
	if _, ok := VerifyToken(signed); ok {
		t.Fatal("expired token must not verify")
	}

	// TTL of zero means tokens never expire
	setKeys(t, 0, "k1")
	if _, ok := VerifyToken(signed); !ok {
		t.Fatal("zero TTL should accept old tokens")
	}
}

func TestSignedWithoutKeysFails(t *testing.T) {
	setKeys(t, 0)
	if _, err := NewToken("alice").Signed(); err == nil {
		t.Fatal("signing without keys must fail")
	}
}

func TestBcryptVerifier(t *testing.T) {
	v := BcryptVerifier{Cost: 4}
	h, err := v.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !v.Verify("s3cret", h) {
		t.Fatal("correct password should verify")
	}
	if v.Verify("wrong", h) {
		t.Fatal("wrong password must not verify")
	}
}
