// Package storage provides password-protected persistence for keys: a
// single-key file store and a multi-key keyring on badger. Both seal keys
// in the same Argon2id + AES-256-GCM JSON envelope.
package storage

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Caqil/eccryptor/pkg/crypto/rand"
	"github.com/Caqil/eccryptor/pkg/keygen"
	"github.com/Caqil/eccryptor/pkg/logger"
)

// KeyStorage defines the interface for single-key storage
type KeyStorage interface {
	// Save encrypts and saves a key with password protection
	Save(key *keygen.Key, password string) error

	// Load decrypts and loads the key using the password
	Load(password string) (*keygen.Key, error)

	// Delete securely deletes the stored key
	Delete() error

	// Exists checks if a key exists in storage
	Exists() bool

	// Backup copies the encrypted key to backupPath
	Backup(backupPath string) error

	// Restore replaces the stored key with a verified backup
	Restore(backupPath, password string) error

	// GetMetadata returns storage metadata without decrypting
	GetMetadata() (*StorageMetadata, error)

	// ChangePassword re-encrypts the key with a new password
	ChangePassword(oldPassword, newPassword string) error

	// Verify validates the integrity of stored data
	Verify(password string) error
}

var _ KeyStorage = (*FileStorage)(nil)

// writeSecureFile writes data to a file with secure permissions
func writeSecureFile(path string, data []byte, mode os.FileMode) error {
	tmpPath := path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

// readSecureFile reads data from a file and validates permissions
func readSecureFile(path string, expectedMode os.FileMode) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	if info.Mode().Perm() != expectedMode {
		return nil, fmt.Errorf("%w: file has permissions %o, expected %o",
			ErrPermissionDenied, info.Mode().Perm(), expectedMode)
	}

	return os.ReadFile(path)
}

// FileStorage implements KeyStorage using one encrypted file
type FileStorage struct {
	config *StorageConfig
	log    *logger.Logger
}

// NewFileStorage creates a new file-based key storage
func NewFileStorage(config *StorageConfig) (*FileStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &FileStorage{
		config: config,
		log:    logger.Global().Component("storage"),
	}, nil
}

// WithLogger replaces the storage logger
func (fs *FileStorage) WithLogger(l *logger.Logger) *FileStorage {
	if l != nil {
		fs.log = l.Component("storage")
	}
	return fs
}

// Save encrypts and saves a key to disk
func (fs *FileStorage) Save(key *keygen.Key, password string) error {
	return fs.save(key, password, nil)
}

func (fs *FileStorage) save(key *keygen.Key, password string, prev *StorageMetadata) error {
	var createdAt time.Time
	if prev != nil {
		createdAt = prev.CreatedAt
	}

	encrypted, err := seal(key, password, &fs.config.ProtectionConfig, createdAt)
	if err != nil {
		return err
	}

	data, err := encrypted.marshal()
	if err != nil {
		return err
	}

	if err := writeSecureFile(fs.config.FilePath, data, fs.config.FileMode); err != nil {
		return err
	}

	fs.log.InfoEvent().
		Str("path", fs.config.FilePath).
		Str("curve", encrypted.Metadata.Curve).
		Bool("secret", encrypted.Metadata.Secret).
		Msg("key saved")

	return nil
}

func (fs *FileStorage) readEnvelope(path string) (*EncryptedKey, error) {
	data, err := readSecureFile(path, fs.config.FileMode)
	if err != nil {
		return nil, err
	}
	return unmarshalEnvelope(data)
}

// Load decrypts and loads the key from disk
func (fs *FileStorage) Load(password string) (*keygen.Key, error) {
	encrypted, err := fs.readEnvelope(fs.config.FilePath)
	if err != nil {
		return nil, err
	}

	key, err := encrypted.open(password)
	if err != nil {
		fs.log.WarnEvent().Str("path", fs.config.FilePath).Err(err).Msg("key load failed")
		return nil, err
	}

	return key, nil
}

// Delete overwrites the stored key with random bytes and removes it
func (fs *FileStorage) Delete() error {
	info, err := os.Stat(fs.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrKeyNotFound
		}
		return err
	}

	f, err := os.OpenFile(fs.config.FilePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	_, err = io.CopyN(f, randReader{}, info.Size())
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to overwrite key file: %w", err)
	}

	if err := os.Remove(fs.config.FilePath); err != nil {
		return err
	}

	fs.log.InfoEvent().Str("path", fs.config.FilePath).Msg("key deleted")
	return nil
}

// randReader adapts rand.GenerateRandomBytes to io.Reader
type randReader struct{}

func (randReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := rand.GenerateRandomBytes(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}

// Exists checks if a key exists in storage
func (fs *FileStorage) Exists() bool {
	_, err := os.Stat(fs.config.FilePath)
	return err == nil
}

// Backup copies the encrypted key to backupPath
func (fs *FileStorage) Backup(backupPath string) error {
	data, err := readSecureFile(fs.config.FilePath, fs.config.FileMode)
	if err != nil {
		return err
	}

	if err := writeSecureFile(backupPath, data, fs.config.FileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}

	return nil
}

// Restore replaces the stored key with the backup at backupPath after
// checking that password opens it
func (fs *FileStorage) Restore(backupPath, password string) error {
	data, err := readSecureFile(backupPath, fs.config.FileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}

	encrypted, err := unmarshalEnvelope(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}
	if _, err := encrypted.open(password); err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}

	if err := writeSecureFile(fs.config.FilePath, data, fs.config.FileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}

	return nil
}

// GetMetadata returns storage metadata without decrypting
func (fs *FileStorage) GetMetadata() (*StorageMetadata, error) {
	encrypted, err := fs.readEnvelope(fs.config.FilePath)
	if err != nil {
		return nil, err
	}
	return &encrypted.Metadata, nil
}

// ChangePassword re-encrypts the key with a new password
func (fs *FileStorage) ChangePassword(oldPassword, newPassword string) error {
	encrypted, err := fs.readEnvelope(fs.config.FilePath)
	if err != nil {
		return err
	}

	key, err := encrypted.open(oldPassword)
	if err != nil {
		return err
	}
	defer key.Zero()

	return fs.save(key, newPassword, &encrypted.Metadata)
}

// Verify validates the integrity of stored data
func (fs *FileStorage) Verify(password string) error {
	key, err := fs.Load(password)
	if err != nil {
		return err
	}
	key.Zero()
	return nil
}
