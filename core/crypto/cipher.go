// Package crypto encrypts OAuth tokens at rest.
//
// Ciphertexts have the form hex(iv) + ":" + hex(ciphertext), using AES-256-CBC
// with PKCS#7 padding and a fresh random IV per call. The format carries no
// authentication tag, so tampering is only detected when it breaks the padding.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
)

const keySize = 32

// Cipher is safe for concurrent use. The key is fixed at construction.
type Cipher struct {
	block cipher.Block
}

// NewCipher builds a Cipher from a 64 character hex key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, errors.ConfigurationError("encryption key is not valid hex", err)
	}
	if len(key) != keySize {
		return nil, errors.ConfigurationError(fmt.Sprintf("encryption key must be %d bytes, got %d", keySize, len(key)), nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.ConfigurationError("failed to create cipher", err)
	}
	return &Cipher{block: block}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to generate IV", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(opaque string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(opaque, ":")
	if !ok {
		return "", errors.DecryptionError("malformed ciphertext: missing separator", nil)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", errors.DecryptionError("malformed ciphertext: invalid IV encoding", err)
	}
	if len(iv) != aes.BlockSize {
		return "", errors.DecryptionError(fmt.Sprintf("malformed ciphertext: IV must be %d bytes, got %d", aes.BlockSize, len(iv)), nil)
	}

	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", errors.DecryptionError("malformed ciphertext: invalid body encoding", err)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errors.DecryptionError("malformed ciphertext: body is not a whole number of blocks", nil)
	}

	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ct)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", errors.DecryptionError("failed to decrypt: wrong key or corrupted data", err)
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding size %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding byte")
		}
	}
	return data[:len(data)-n], nil
}
