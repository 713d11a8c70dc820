package storage

import (
	"fmt"
	"os"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// ProtectionConfig holds the password policy and Argon2id parameters shared
// by the file store and the keyring
type ProtectionConfig struct {
	// Argon2 KDF parameters
	Argon2Time    uint32 // Time cost (iterations)
	Argon2Memory  uint32 // Memory cost (KB)
	Argon2Threads uint8  // Parallelism
	Argon2KeyLen  uint32 // Derived key length

	// MinPasswordLength is the minimum password length
	MinPasswordLength int
}

// DefaultProtectionConfig returns the recommended KDF parameters
func DefaultProtectionConfig() ProtectionConfig {
	return ProtectionConfig{
		Argon2Time:        3,         // 3 iterations (recommended minimum)
		Argon2Memory:      64 * 1024, // 64 MB
		Argon2Threads:     4,
		Argon2KeyLen:      32, // AES-256
		MinPasswordLength: 12,
	}
}

// Validate checks the KDF parameters and password policy
func (c *ProtectionConfig) Validate() error {
	if c.Argon2Time < 1 {
		return fmt.Errorf("argon2 time cost must be at least 1")
	}

	if c.Argon2Memory < 8*1024 {
		return fmt.Errorf("argon2 memory cost must be at least 8 MB")
	}

	if c.Argon2Threads < 1 {
		return fmt.Errorf("argon2 threads must be at least 1")
	}

	if c.Argon2KeyLen != 32 {
		return fmt.Errorf("key length must be 32 bytes for AES-256")
	}

	if c.MinPasswordLength < 8 {
		return fmt.Errorf("minimum password length must be at least 8")
	}

	return nil
}

func (c *ProtectionConfig) kdfParams(salt []byte) KDFParams {
	return KDFParams{
		Time:    c.Argon2Time,
		Memory:  c.Argon2Memory,
		Threads: c.Argon2Threads,
		KeyLen:  c.Argon2KeyLen,
		Salt:    salt,
	}
}

// deriveKey derives an encryption key from password using Argon2id with
// the parameters recorded in the envelope, so stores written under older
// settings stay readable
func deriveKey(password string, p KDFParams) []byte {
	return argon2.IDKey([]byte(password), p.Salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// validatePassword checks if password meets minimum requirements
func (c *ProtectionConfig) validatePassword(password string) error {
	if len(password) < c.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, c.MinPasswordLength)
	}

	hasLetter := false
	hasNumber := false
	for _, ch := range password {
		if unicode.IsLetter(ch) {
			hasLetter = true
		}
		if unicode.IsDigit(ch) {
			hasNumber = true
		}
	}

	if !hasLetter || !hasNumber {
		return fmt.Errorf("%w: must contain both letters and numbers", ErrWeakPassword)
	}

	return nil
}

// StorageConfig contains configuration for a single-key file store
type StorageConfig struct {
	ProtectionConfig

	// FilePath is the path where the key is stored
	FilePath string

	// FileMode is the Unix file permissions (default: 0600)
	FileMode os.FileMode
}

// DefaultStorageConfig returns a secure default configuration
func DefaultStorageConfig(filePath string) *StorageConfig {
	return &StorageConfig{
		ProtectionConfig: DefaultProtectionConfig(),
		FilePath:         filePath,
		FileMode:         0600, // Read/write for owner only
	}
}

// Validate validates the storage configuration
func (c *StorageConfig) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	if c.FileMode&0077 != 0 {
		return fmt.Errorf("insecure file permissions: %o (should be 0600)", c.FileMode)
	}

	return c.ProtectionConfig.Validate()
}
