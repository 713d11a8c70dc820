package storage

import "errors"

// Storage errors
var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidKey       = errors.New("invalid key")
	ErrStorageCorrupted = errors.New("storage corrupted")
	ErrPermissionDenied = errors.New("permission denied")
	ErrWeakPassword     = errors.New("password too weak")
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrBackupFailed     = errors.New("backup failed")
	ErrRestoreFailed    = errors.New("restore failed")
	ErrVersionMismatch  = errors.New("version mismatch")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidName      = errors.New("invalid key name")
	ErrClosed           = errors.New("keyring closed")
)
