package keycrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
)

const ivSize = 12
const contentKeySize = 32
const versionMagic = byte('K')

// ErrCrypto is returned for any envelope that cannot be produced or opened.
// It deliberately carries no detail about which stage failed.
var ErrCrypto = errors.New("keycrypt: envelope operation failed")

// Wrap seals plaintext key material under the wrapper's public key.
//
// A fresh AES-256-GCM content key encrypts the material; the content key is
// wrapped with RSA-OAEP. Layout:
//
//	"#{VERSION_MAGIC}#{wrappedKeyLen:2}#{wrappedKey}#{iv}#{ctext+tag}"
func Wrap(plaintext []byte, wrapper *PublicKey) ([]byte, error) {
	if wrapper == nil {
		return nil, ErrCrypto
	}

	contentKey, err := RandomBytes(contentKeySize)
	if err != nil {
		return nil, ErrCrypto
	}

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, wrapper.publicKey, contentKey, nil)
	if err != nil {
		return nil, ErrCrypto
	}

	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return nil, ErrCrypto
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrCrypto
	}

	iv, err := RandomNonce()
	if err != nil {
		return nil, ErrCrypto
	}

	cipherText := aesgcm.Seal(nil, iv, plaintext, nil)

	return packEnvelope(wrappedKey, iv, cipherText), nil
}

// Unwrap opens an envelope produced by Wrap using the wrapper's private key.
func Unwrap(envelope []byte, wrapper *Key) ([]byte, error) {
	if wrapper == nil {
		return nil, ErrCrypto
	}

	wrappedKey, iv, cipherText, err := unpackEnvelope(envelope)
	if err != nil {
		return nil, ErrCrypto
	}

	contentKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, wrapper.privateKey, wrappedKey, nil)
	if err != nil {
		return nil, ErrCrypto
	}

	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return nil, ErrCrypto
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrCrypto
	}

	plaintext, err := aesgcm.Open(nil, iv, cipherText, nil)
	if err != nil {
		return nil, ErrCrypto
	}

	return plaintext, nil
}

// WrapKey wraps a private key for another party.
func WrapKey(key *Key, wrapper *PublicKey) ([]byte, error) {
	if key == nil {
		return nil, ErrCrypto
	}
	return Wrap(key.Serialize(), wrapper)
}

// UnwrapKey opens an envelope holding a serialized private key.
func UnwrapKey(envelope []byte, wrapper *Key) (*Key, error) {
	der, err := Unwrap(envelope, wrapper)
	if err != nil {
		return nil, err
	}

	key, err := NewKey(der)
	if err != nil {
		return nil, ErrCrypto
	}
	return key, nil
}

func RandomNonce() ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key because of
	// the risk of a repeat.
	return RandomBytes(ivSize)
}

func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}

	return value, nil
}

func packEnvelope(wrappedKey, iv, cipherText []byte) []byte {
	dataLength := 1 + 2 + len(wrappedKey) + ivSize + len(cipherText)
	data := make([]byte, dataLength)

	data[0] = versionMagic
	index := 1

	binary.BigEndian.PutUint16(data[index:], uint16(len(wrappedKey)))
	index += 2

	copy(data[index:], wrappedKey)
	index += len(wrappedKey)

	copy(data[index:], iv[:ivSize])
	index += ivSize

	copy(data[index:], cipherText)

	return data
}

func unpackEnvelope(data []byte) (wrappedKey, iv, cipherText []byte, err error) {
	if len(data) < 1+2+ivSize || data[0] != versionMagic {
		return nil, nil, nil, ErrCrypto
	}

	index := 1
	wrappedKeyLen := int(binary.BigEndian.Uint16(data[index:]))
	index += 2

	if len(data) < index+wrappedKeyLen+ivSize {
		return nil, nil, nil, ErrCrypto
	}

	wrappedKey = data[index : index+wrappedKeyLen]
	index += wrappedKeyLen

	iv = data[index : index+ivSize]
	index += ivSize

	cipherText = data[index:]

	return wrappedKey, iv, cipherText, nil
}
