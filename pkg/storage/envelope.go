package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Caqil/eccryptor/internal/security"
	"github.com/Caqil/eccryptor/pkg/crypto/hash"
	"github.com/Caqil/eccryptor/pkg/crypto/rand"
	"github.com/Caqil/eccryptor/pkg/keygen"
)

const (
	envelopeVersion = "1.0"
	saltSize        = 32 // 256-bit salt
	nonceSize       = 12 // 96-bit nonce for GCM
)

// StorageMetadata describes a stored key without decrypting it
type StorageMetadata struct {
	Version       string    `json:"version"`
	Curve         string    `json:"curve"`
	Secret        bool      `json:"secret"`
	Fingerprint   string    `json:"fingerprint"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedAt    time.Time `json:"modified_at"`
	EncryptionAlg string    `json:"encryption_alg"`
	KDFAlg        string    `json:"kdf_alg"`
	KDFParams     KDFParams `json:"kdf_params"`
	Checksum      []byte    `json:"checksum"`
}

// KDFParams contains key derivation function parameters
type KDFParams struct {
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
	KeyLen  uint32 `json:"key_len"`
	Salt    []byte `json:"salt"`
}

// maxArgon2Memory caps the memory cost accepted from an envelope (1 GB)
const maxArgon2Memory = 1024 * 1024

func (p KDFParams) validate() error {
	if p.Time < 1 || p.Threads < 1 || p.KeyLen != 32 || len(p.Salt) == 0 ||
		p.Memory < 8*1024 || p.Memory > maxArgon2Memory {
		return fmt.Errorf("%w: unusable KDF parameters", ErrStorageCorrupted)
	}
	return nil
}

// EncryptedKey is the JSON envelope written to disk and to the keyring.
// The ciphertext is AES-256-GCM over keygen.Key.MarshalBinary.
type EncryptedKey struct {
	Metadata   StorageMetadata `json:"metadata"`
	Nonce      []byte          `json:"nonce"`
	Ciphertext []byte          `json:"ciphertext"`
}

// generateSalt generates a cryptographically secure random salt
func generateSalt() ([]byte, error) {
	salt, err := rand.GenerateRandomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// generateNonce generates a random nonce for AES-GCM
func generateNonce() ([]byte, error) {
	nonce, err := rand.GenerateNonce(nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// encryptData encrypts data using AES-256-GCM
func encryptData(plaintext, key []byte) (nonce, ciphertext []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, ErrEncryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, ErrEncryptionFailed
	}

	nonce, err = generateNonce()
	if err != nil {
		return nil, nil, err
	}

	ciphertext = gcm.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// decryptData decrypts data using AES-256-GCM
func decryptData(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	if len(nonce) != gcm.NonceSize() {
		return nil, ErrInvalidNonce
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return plaintext, nil
}

// computeChecksum computes the SHA-256 checksum of data
func computeChecksum(data []byte) []byte {
	return hash.Hash(data, hash.SHA256)
}

// seal encrypts key under password. createdAt is kept when re-sealing an
// existing entry; pass the zero time for a new one.
func seal(key *keygen.Key, password string, cfg *ProtectionConfig, createdAt time.Time) (*EncryptedKey, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}
	if err := cfg.validatePassword(password); err != nil {
		return nil, err
	}

	keyData, err := key.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize key: %w", err)
	}
	defer security.SecureZero(keyData)

	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}

	kdf := cfg.kdfParams(salt)
	aesKey := deriveKey(password, kdf)
	defer security.SecureZero(aesKey)

	nonce, ciphertext, err := encryptData(keyData, aesKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	return &EncryptedKey{
		Metadata: StorageMetadata{
			Version:       envelopeVersion,
			Curve:         key.Curve().Name(),
			Secret:        key.IsSecret(),
			Fingerprint:   key.Fingerprint(),
			CreatedAt:     createdAt,
			ModifiedAt:    now,
			EncryptionAlg: "AES-256-GCM",
			KDFAlg:        "Argon2id",
			KDFParams:     kdf,
			Checksum:      computeChecksum(ciphertext),
		},
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// open checks the envelope and decrypts the key it holds
func (e *EncryptedKey) open(password string) (*keygen.Key, error) {
	if e.Metadata.Version != envelopeVersion {
		return nil, ErrVersionMismatch
	}
	if !security.ConstantTimeCompare(e.Metadata.Checksum, computeChecksum(e.Ciphertext)) {
		return nil, ErrChecksumMismatch
	}
	if err := e.Metadata.KDFParams.validate(); err != nil {
		return nil, err
	}

	aesKey := deriveKey(password, e.Metadata.KDFParams)
	defer security.SecureZero(aesKey)

	plaintext, err := decryptData(e.Ciphertext, e.Nonce, aesKey)
	if err != nil {
		return nil, err
	}
	defer security.SecureZero(plaintext)

	key, err := keygen.ParseKey(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageCorrupted, err)
	}
	if key.Curve().Name() != e.Metadata.Curve || key.IsSecret() != e.Metadata.Secret {
		return nil, fmt.Errorf("%w: metadata does not match stored key", ErrStorageCorrupted)
	}

	return key, nil
}

func (e *EncryptedKey) marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize encrypted key: %w", err)
	}
	return data, nil
}

func unmarshalEnvelope(data []byte) (*EncryptedKey, error) {
	var e EncryptedKey
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return nil, ErrStorageCorrupted
	}
	return &e, nil
}
