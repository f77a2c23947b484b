package intake

import "io"

// Encryptor protects archived evidence content at rest. Encryption needs
// only the public key; decryption requires a passphrase to unlock the
// private key, producing a DecryptionContext for the session. Privileged
// material in the archive never touches disk unencrypted once enabled.
type Encryptor interface {
	// Setup performs one-time key generation: a key pair is created, the
	// public key stored in plaintext, and the private key encrypted with
	// the provided passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	// Uses the public key only.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns a
	// DecryptionContext valid for the duration of the session.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist at their configured paths.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for the
// duration of a retrieval session. The unlocked key is never written to disk.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
