package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

const keyHexLen = 64 // 32 bytes hex encoded

// envelope is the stored ciphertext format. The nonce and GCM tag are kept
// as separate hex fields so stored values survive key-format audits.
type envelope struct {
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
	AuthTag   string `json:"authTag"`
}

// Cipher encrypts and decrypts sensitive configuration values with AES-256-GCM.
type Cipher struct {
	key []byte
}

// NewCipher parses the hex-encoded 256-bit key.
func NewCipher(keyHex string) (*Cipher, error) {
	if len(keyHex) != keyHexLen {
		return nil, fmt.Errorf("encryption key must be %d hex characters, got %d", keyHexLen, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding encryption key: %w", err)
	}
	return &Cipher{key: key}, nil
}

// Encrypt seals plaintext and returns the JSON envelope stored in system_config.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - gcm.Overhead()

	env := envelope{
		Encrypted: hex.EncodeToString(sealed[:tagStart]),
		IV:        hex.EncodeToString(nonce),
		AuthTag:   hex.EncodeToString(sealed[tagStart:]),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshaling envelope: %w", err)
	}
	return string(raw), nil
}

// Decrypt opens a JSON envelope produced by Encrypt.
func (c *Cipher) Decrypt(stored string) (string, error) {
	var env envelope
	if err := json.Unmarshal([]byte(stored), &env); err != nil {
		return "", fmt.Errorf("parsing envelope: %w", err)
	}

	ciphertext, err := hex.DecodeString(env.Encrypted)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	nonce, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", fmt.Errorf("decoding iv: %w", err)
	}
	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil {
		return "", fmt.Errorf("decoding auth tag: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating gcm: %w", err)
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("unexpected nonce size %d", len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("opening envelope: %w", err)
	}
	return string(plaintext), nil
}
