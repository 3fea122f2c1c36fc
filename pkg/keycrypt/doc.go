// Package keycrypt provides the key material model for the vault.
//
// Every item and every group owns an RSA key pair. Only public halves are
// stored in the clear; private halves travel between parties wrapped in
// envelopes produced by Wrap and opened by Unwrap.
//
// # Key Management
//
//	key, err := keycrypt.GenerateKey()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get the public key in PEM format
//	publicPEM := key.PublicPem()
//
// # Envelope Encryption
//
// Wrap seals arbitrary key material under another party's public key. The
// material is encrypted with a fresh AES-256-GCM content key, and the content
// key is wrapped with RSA-OAEP:
//
//	envelope, err := keycrypt.Wrap(groupKey.Serialize(), member.Public())
//
//	// Only the member's private key can open it again
//	plaintext, err := keycrypt.Unwrap(envelope, memberKey)
//
// Any failure to open an envelope is reported as ErrCrypto without detail, so
// callers cannot distinguish a wrong key from corrupted bytes.
package keycrypt
