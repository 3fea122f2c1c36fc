package keycrypt

import (
	"bytes"
	"errors"
	"testing"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	wrapper, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate wrapper key: %v", err)
	}

	material := []byte("some key material that must survive the round trip")

	envelope, err := Wrap(material, wrapper.Public())
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}

	if bytes.Contains(envelope, material) {
		t.Fatal("envelope contains plaintext material")
	}

	opened, err := Unwrap(envelope, wrapper)
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}

	if !bytes.Equal(opened, material) {
		t.Errorf("round trip mismatch: got %q, want %q", opened, material)
	}
}

func TestWrapKeyUnwrapKeyRoundTrip(t *testing.T) {
	wrapper, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate wrapper key: %v", err)
	}

	inner, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate inner key: %v", err)
	}

	envelope, err := WrapKey(inner, wrapper.Public())
	if err != nil {
		t.Fatalf("WrapKey() error = %v", err)
	}

	opened, err := UnwrapKey(envelope, wrapper)
	if err != nil {
		t.Fatalf("UnwrapKey() error = %v", err)
	}

	if opened.Fingerprint() != inner.Fingerprint() {
		t.Error("unwrapped key fingerprint doesn't match original")
	}
}

func TestUnwrapWithWrongKey(t *testing.T) {
	wrapper, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate wrapper key: %v", err)
	}
	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate other key: %v", err)
	}

	envelope, err := Wrap([]byte("secret"), wrapper.Public())
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}

	_, err = Unwrap(envelope, other)
	if !errors.Is(err, ErrCrypto) {
		t.Errorf("expected ErrCrypto for wrong key, got %v", err)
	}
}

func TestUnwrapMalformedEnvelope(t *testing.T) {
	wrapper, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate wrapper key: %v", err)
	}

	cases := [][]byte{
		nil,
		{},
		[]byte("x"),
		[]byte("not an envelope at all, definitely too short to parse"),
	}
	for _, envelope := range cases {
		if _, err := Unwrap(envelope, wrapper); !errors.Is(err, ErrCrypto) {
			t.Errorf("expected ErrCrypto for envelope %q, got %v", envelope, err)
		}
	}
}

func TestUnwrapCorruptedEnvelope(t *testing.T) {
	wrapper, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate wrapper key: %v", err)
	}

	envelope, err := Wrap([]byte("secret"), wrapper.Public())
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}

	// Flip a bit in the ciphertext tail
	envelope[len(envelope)-1] ^= 0x01

	if _, err := Unwrap(envelope, wrapper); !errors.Is(err, ErrCrypto) {
		t.Errorf("expected ErrCrypto for corrupted envelope, got %v", err)
	}
}

func TestWrapProducesFreshEnvelopes(t *testing.T) {
	wrapper, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate wrapper key: %v", err)
	}

	first, err := Wrap([]byte("secret"), wrapper.Public())
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	second, err := Wrap([]byte("secret"), wrapper.Public())
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}

	if bytes.Equal(first, second) {
		t.Error("two envelopes of the same material are identical")
	}
}
