package cryptox

import (
	"bytes"
	"testing"
)

func TestHashCode_Deterministic(t *testing.T) {
	code := []byte("482913")
	salt := []byte("fixed-salt-16byt")

	h1 := HashCode(code, salt)
	h2 := HashCode(code, salt)

	if !bytes.Equal(h1, h2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(h1) != 32 {
		t.Errorf("expected 32-byte digest, got %d", len(h1))
	}
}

func TestHashCode_DifferentSalts(t *testing.T) {
	code := []byte("482913")

	h1 := HashCode(code, []byte("salt-1"))
	h2 := HashCode(code, []byte("salt-2"))

	if bytes.Equal(h1, h2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashCode_NotThePlaintext(t *testing.T) {
	code := []byte("482913")
	h := HashCode(code, []byte("salt"))
	if bytes.Contains(h, code) {
		t.Errorf("digest must not contain the raw code")
	}
}

func TestVerifyCode(t *testing.T) {
	code := []byte("482913")
	salt := []byte("some-random-salt")
	stored := HashCode(code, salt)

	if !VerifyCode([]byte("482913"), salt, stored) {
		t.Errorf("correct code must verify")
	}
	if VerifyCode([]byte("482914"), salt, stored) {
		t.Errorf("wrong code must not verify")
	}
	if VerifyCode([]byte("482913"), []byte("other-salt"), stored) {
		t.Errorf("wrong salt must not verify")
	}
}
