// Package vault implements an authenticated file persistence channel
// for the engine's ISAAC state.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"os"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/common/rngerrors"
)

// KeyLength is the only accepted AES key length: AES-256.
const KeyLength = 32

// ivSize matches the AES block size, reproducing the original's fixed
// all-zero GCM IV rather than Go's 12-byte default nonce size.
const ivSize = aes.BlockSize

// FileVault reads and writes a file, optionally wrapping its contents
// in AES-GCM authenticated encryption with a fixed all-zero IV. The
// fixed IV is carried over from the scheme this vault replaces. Every
// write under a given key uses that same IV, so repeated writes under
// one key (each SaveState or Destroy of an engine) reuse a GCM nonce.
type FileVault struct {
	path string

	logger *logging.Logger
}

// New creates a FileVault bound to path.
func New(path string) *FileVault {
	return &FileVault{path: path, logger: logging.GetLogger("vault")}
}

// Exists reports whether the backing file is present.
func (v *FileVault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// ReadFile reads the backing file's contents, decrypting with key if
// key is non-empty. It returns rngerrors.ErrNotFound if the file is
// absent, rngerrors.ErrInvalidKey if key is non-empty but not
// KeyLength bytes, and rngerrors.ErrAuthFailure if authenticated
// decryption fails.
func (v *FileVault) ReadFile(key []byte) ([]byte, error) {
	raw, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rngerrors.ErrNotFound
		}
		return nil, err
	}

	if len(key) == 0 {
		return raw, nil
	}
	if len(key) != KeyLength {
		return nil, rngerrors.ErrInvalidKey
	}

	plain, err := decrypt(raw, key)
	if err != nil {
		v.logger.Warn("authenticated decryption failed", "path", v.path)
		return nil, rngerrors.ErrAuthFailure
	}
	return plain, nil
}

// WriteFile writes data to the backing file, encrypting with key if
// key is non-empty. It returns rngerrors.ErrInvalidKey if key is
// non-empty but not KeyLength bytes.
func (v *FileVault) WriteFile(data []byte, key []byte) error {
	out := data
	if len(key) != 0 {
		if len(key) != KeyLength {
			return rngerrors.ErrInvalidKey
		}
		var err error
		out, err = encrypt(data, key)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(v.path, out, 0o600)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, ivSize)
	return gcm.Seal(nil, iv, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, ivSize)
	return gcm.Open(nil, iv, ciphertext, nil)
}
