package backup

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("the delivery ledger is in here somewhere")

	sealed, err := Encrypt(plaintext, "correct horse battery staple")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatal("ciphertext contains plaintext")
	}

	got, err := Decrypt(sealed, "correct horse battery staple")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong"); err == nil {
		t.Error("decrypt with wrong passphrase should fail")
	}
}

func TestDecryptTruncatedPayload(t *testing.T) {
	if _, err := Decrypt([]byte("short"), "any"); err == nil {
		t.Error("truncated payload should fail")
	}
}

func TestEncryptUniquePerCall(t *testing.T) {
	a, err := Encrypt([]byte("same input"), "pass")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := Encrypt([]byte("same input"), "pass")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same input should differ (fresh salt and nonce)")
	}
}
