// Package keycrypt encrypts secret key material with an externally supplied
// AES data key. Output is base64(iv ‖ ciphertext) using CBC mode with PKCS#7
// padding. There is no authentication tag, no key derivation and no
// integrity check; the data key is expected to come from a KMS.
package keycrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Errors returned on malformed inputs.
var (
	ErrKeySize       = errors.New("AES key must be 16, 24 or 32 bytes")
	ErrCiphertext    = errors.New("ciphertext is truncated or misaligned")
	ErrPadding       = errors.New("invalid padding")
	ErrEmptyPayload  = errors.New("payload is empty")
	ErrMalformedHex  = errors.New("payload is not a hexadecimal string")
	ErrMalformedB64  = errors.New("input is not base64")
	ErrMalformedCode = errors.New("encoded message is too short")
)

// Encrypt encrypts data under key with a random IV and returns
// base64(iv ‖ ciphertext).
func Encrypt(key, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: got %d", ErrKeySize, len(key))
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad(data, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// EncryptHex decodes a base64 AES key and a hex payload (a private key,
// typically) and encrypts the raw payload bytes.
func EncryptHex(keyB64, payloadHex string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedB64, err)
	}
	data, err := hex.DecodeString(payloadHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return Encrypt(key, data)
}

// EncryptPlaintext decodes a base64 AES key and encrypts the payload as raw
// text bytes.
func EncryptPlaintext(keyB64, payload string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedB64, err)
	}
	return Encrypt(key, []byte(payload))
}

// Decrypt reverses Encrypt: it splits base64(iv ‖ ciphertext) and returns
// the unpadded plaintext bytes.
func Decrypt(key []byte, encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedB64, err)
	}
	if len(raw) < aes.BlockSize {
		return nil, ErrMalformedCode
	}

	iv := raw[:aes.BlockSize]
	ciphertext := raw[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: got %d", ErrKeySize, len(key))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

// DecryptB64Key decodes a base64 AES key before decrypting.
func DecryptB64Key(keyB64, encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedB64, err)
	}
	return Decrypt(key, encoded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrPadding
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, ErrPadding
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, ErrPadding
		}
	}
	return data[:len(data)-pad], nil
}
