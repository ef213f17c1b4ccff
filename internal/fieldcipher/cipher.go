// Package fieldcipher encrypts single string fields before they are stored.
//
// The scheme is AES-256-CBC with a key derived from one configured secret and
// a fixed all-zero IV. Identical plaintexts therefore always produce identical
// ciphertexts: the output is deterministic and NOT semantically secure. The
// format is kept bit-compatible with ciphertexts already stored as bare hex.
// A hardened variant needs a random IV per record stored as (iv || ciphertext),
// which changes the stored format.
package fieldcipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	apperrors "casedesk/internal/errors"
)

const keySize = 32

// ErrDecryption is returned when a ciphertext was not produced by this cipher and key.
var ErrDecryption = fmt.Errorf("fieldcipher: %w", apperrors.ErrDecryption)

// ErrEmptySecret is returned by New when no secret is configured.
var ErrEmptySecret = errors.New("fieldcipher: secret must not be empty")

// Cipher is immutable after construction and safe for concurrent use.
type Cipher struct {
	block cipher.Block
	iv    [aes.BlockSize]byte
}

// New derives the key from secret and returns a ready Cipher.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	block, err := aes.NewCipher(DeriveKey(secret))
	if err != nil {
		return nil, fmt.Errorf("fieldcipher: init aes: %w", err)
	}
	return &Cipher{block: block}, nil
}

// DeriveKey returns the first 32 characters of base64(sha256(secret)).
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	return []byte(encoded[:keySize])
}

// Encrypt returns the lowercase hex ciphertext of plaintext.
// An empty plaintext yields an empty result.
func (c *Cipher) Encrypt(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	padded := pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv[:]).CryptBlocks(out, padded)
	return hex.EncodeToString(out)
}

// Decrypt reverses Encrypt. An empty ciphertext yields an empty result.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed hex", ErrDecryption)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: length %d is not a block multiple", ErrDecryption, len(raw))
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv[:]).CryptBlocks(out, raw)
	plain, ok := unpad(out)
	if !ok {
		return "", fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not utf-8", ErrDecryption)
	}
	return string(plain), nil
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, bool) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
