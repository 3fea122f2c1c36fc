package keycrypt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
)

// keyBits is the RSA modulus size for all generated vault keys.
const keyBits = 2048

// Key is an RSA key pair owned by a user, group or item.
type Key struct {
	privateKey  *rsa.PrivateKey
	fingerprint string // lazy loaded; reset if privateKey ever changes
}

// PublicKey is the shareable half of a Key. It can wrap envelopes but never
// open them.
type PublicKey struct {
	publicKey *rsa.PublicKey
}

func NewKey(pkeyDer []byte) (*Key, error) {
	pkey, err := x509.ParsePKCS1PrivateKey(pkeyDer)
	if err != nil {
		return nil, err
	}

	return &Key{privateKey: pkey}, nil
}

// NewPublicKey parses a PKCS1 DER public key as stored in the clear columns.
func NewPublicKey(der []byte) (*PublicKey, error) {
	pub, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, err
	}

	return &PublicKey{publicKey: pub}, nil
}

// GenerateKey generates a new 2048-bit RSA key pair.
func GenerateKey() (*Key, error) {
	pkey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, err
	}

	return &Key{privateKey: pkey}, nil
}

// Serialize returns the DER-encoded private key.
func (k Key) Serialize() []byte {
	return x509.MarshalPKCS1PrivateKey(k.privateKey)
}

// RSAPrivateKey exposes the underlying RSA key for signing integrations.
func (k *Key) RSAPrivateKey() *rsa.PrivateKey {
	return k.privateKey
}

// Public returns the public half of the key.
func (k Key) Public() *PublicKey {
	return &PublicKey{publicKey: &k.privateKey.PublicKey}
}

func (k Key) PrivateRSAPem() []byte {
	return pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(k.privateKey),
		},
	)
}

// Serialize returns the DER-encoded public key.
func (p PublicKey) Serialize() []byte {
	return x509.MarshalPKCS1PublicKey(p.publicKey)
}

func (p PublicKey) PublicPem() []byte {
	return pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PUBLIC KEY",
			Bytes: x509.MarshalPKCS1PublicKey(p.publicKey),
		},
	)
}

func sha256Digest(value []byte) []byte {
	hash := sha256.New()
	hash.Write(value)
	return hash.Sum(nil)
}

// Fingerprint returns the hex SHA256 of the public key DER.
func (k *Key) Fingerprint() string {
	if len(k.fingerprint) > 0 {
		return k.fingerprint
	}

	der, err := x509.MarshalPKIXPublicKey(&k.privateKey.PublicKey)
	if err != nil {
		return ""
	}

	k.fingerprint = hex.EncodeToString(sha256Digest(der))
	return k.fingerprint
}
