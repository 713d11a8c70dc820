package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Caqil/eccryptor/pkg/keygen"
	"github.com/Caqil/eccryptor/pkg/logger"
	"github.com/dgraph-io/badger/v2"
)

const keyPrefix = "key/"

// KeyringConfig configures a badger-backed keyring
type KeyringConfig struct {
	ProtectionConfig

	// Dir is the badger data directory; ignored when InMemory is set
	Dir string

	// InMemory keeps everything in RAM
	InMemory bool

	// Logger receives keyring and badger events; defaults to the global
	// logger
	Logger *logger.Logger
}

// DefaultKeyringConfig returns a keyring configuration rooted at dir
func DefaultKeyringConfig(dir string) *KeyringConfig {
	return &KeyringConfig{
		ProtectionConfig: DefaultProtectionConfig(),
		Dir:              dir,
	}
}

// Validate validates the keyring configuration
func (c *KeyringConfig) Validate() error {
	if !c.InMemory && c.Dir == "" {
		return fmt.Errorf("keyring directory cannot be empty")
	}
	return c.ProtectionConfig.Validate()
}

// Keyring stores many named keys in one badger database, each sealed in
// its own envelope
type Keyring struct {
	config *KeyringConfig
	log    *logger.Logger

	mu sync.RWMutex
	db *badger.DB
}

// OpenKeyring opens or creates a keyring
func OpenKeyring(config *KeyringConfig) (*Keyring, error) {
	if config == nil {
		return nil, fmt.Errorf("keyring config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = logger.Global()
	}
	log = log.Component("keyring")

	dir := config.Dir
	if config.InMemory {
		dir = ""
	}
	opts := badger.DefaultOptions(dir).
		WithInMemory(config.InMemory).
		WithLogger(badgerLogger{log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return &Keyring{config: config, log: log, db: db}, nil
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "\x00/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func dbKey(name string) []byte {
	return []byte(keyPrefix + name)
}

// Put seals key under name, replacing any existing entry. The creation
// time of a replaced entry is kept.
func (k *Keyring) Put(name string, key *keygen.Key, password string) error {
	if err := validateName(name); err != nil {
		return err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.db == nil {
		return ErrClosed
	}

	err := k.db.Update(func(txn *badger.Txn) error {
		prev, err := getEnvelope(txn, name)
		// A corrupted entry may be overwritten
		if err != nil && !errors.Is(err, ErrKeyNotFound) && !errors.Is(err, ErrStorageCorrupted) {
			return err
		}

		var createdAt time.Time
		if err == nil {
			createdAt = prev.Metadata.CreatedAt
		}

		encrypted, err := seal(key, password, &k.config.ProtectionConfig, createdAt)
		if err != nil {
			return err
		}

		data, err := encrypted.marshal()
		if err != nil {
			return err
		}
		return txn.Set(dbKey(name), data)
	})
	if err != nil {
		return err
	}

	k.log.InfoEvent().Str("name", name).Str("curve", key.Curve().Name()).Msg("key stored")
	return nil
}

// Get decrypts the key stored under name
func (k *Keyring) Get(name, password string) (*keygen.Key, error) {
	encrypted, err := k.envelope(name)
	if err != nil {
		return nil, err
	}
	return encrypted.open(password)
}

// Metadata returns the metadata of the key stored under name without
// decrypting it
func (k *Keyring) Metadata(name string) (*StorageMetadata, error) {
	encrypted, err := k.envelope(name)
	if err != nil {
		return nil, err
	}
	return &encrypted.Metadata, nil
}

func (k *Keyring) envelope(name string) (*EncryptedKey, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.db == nil {
		return nil, ErrClosed
	}

	var encrypted *EncryptedKey
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		encrypted, err = getEnvelope(txn, name)
		return err
	})
	return encrypted, err
}

func getEnvelope(txn *badger.Txn, name string) (*EncryptedKey, error) {
	item, err := txn.Get(dbKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return unmarshalEnvelope(data)
}

// Delete removes the key stored under name
func (k *Keyring) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.db == nil {
		return ErrClosed
	}

	err := k.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(dbKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %q", ErrKeyNotFound, name)
			}
			return err
		}
		return txn.Delete(dbKey(name))
	})
	if err != nil {
		return err
	}

	k.log.InfoEvent().Str("name", name).Msg("key deleted")
	return nil
}

// List returns the stored key names in lexical order
func (k *Keyring) List() ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.db == nil {
		return nil, ErrClosed
	}

	var names []string
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	return names, err
}

// Close closes the underlying database. Further calls return ErrClosed.
func (k *Keyring) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.db == nil {
		return nil
	}
	err := k.db.Close()
	k.db = nil
	return err
}

// badgerLogger routes badger's internal logging to zerolog. Badger's info
// and debug chatter is demoted to debug.
type badgerLogger struct {
	log *logger.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.ErrorEvent().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.WarnEvent().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.log.DebugEvent().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.DebugEvent().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
