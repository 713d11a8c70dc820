// Package main demonstrates password-protected key storage
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Caqil/eccryptor/pkg/crypto/curve"
	"github.com/Caqil/eccryptor/pkg/keygen"
	"github.com/Caqil/eccryptor/pkg/storage"
)

func main() {
	fmt.Println("=== Secure Storage Demo ===")

	tmpDir, err := os.MkdirTemp("", "eccryptor-storage-demo-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	fmt.Printf("Using temporary directory: %s\n\n", tmpDir)

	// Step 1: Generate a key
	fmt.Println("Step 1: Generating secp256k1 key...")
	c, err := curve.NewCurve(curve.Secp256k1)
	if err != nil {
		log.Fatalf("Failed to create curve: %v", err)
	}
	key, err := keygen.GenerateKey(c)
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	fmt.Printf("  ✓ Key generated, fingerprint %s\n", key.Fingerprint())

	// Step 2: Save with encryption
	fmt.Println("\nStep 2: Saving key with encryption...")
	password := "MySecurePassword123!"
	filePath := filepath.Join(tmpDir, "key.json")

	store, err := storage.NewFileStorage(storage.DefaultStorageConfig(filePath))
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	if err := store.Save(key, password); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	fmt.Println("  ✓ Key encrypted and saved")
	fmt.Printf("    File: %s\n", filePath)

	// Step 3: Get metadata (without decryption)
	fmt.Println("\nStep 3: Reading metadata (no decryption needed)...")
	metadata, err := store.GetMetadata()
	if err != nil {
		log.Fatalf("Failed to get metadata: %v", err)
	}
	fmt.Printf("    Curve: %s (secret: %v)\n", metadata.Curve, metadata.Secret)
	fmt.Printf("    Created: %s\n", metadata.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("    Encryption: %s, KDF: %s\n", metadata.EncryptionAlg, metadata.KDFAlg)

	// Step 4: Load with password
	fmt.Println("\nStep 4: Loading key...")
	loaded, err := store.Load(password)
	if err != nil {
		log.Fatalf("Failed to load: %v", err)
	}
	fmt.Printf("  ✓ Key decrypted and loaded (matches: %v)\n", loaded.Equal(key))

	// Step 5: Backup, delete and restore
	fmt.Println("\nStep 5: Simulating disaster recovery...")
	backupPath := filepath.Join(tmpDir, "key.backup.json")
	if err := store.Backup(backupPath); err != nil {
		log.Fatalf("Failed to create backup: %v", err)
	}
	if err := store.Delete(); err != nil {
		log.Fatalf("Failed to delete: %v", err)
	}
	if err := store.Restore(backupPath, password); err != nil {
		log.Fatalf("Failed to restore: %v", err)
	}
	restored, err := store.Load(password)
	if err != nil || !restored.Equal(key) {
		log.Fatalf("Restored key does not match: %v", err)
	}
	fmt.Println("  ✓ Restored from backup")

	// Step 6: Password rotation
	fmt.Println("\nStep 6: Rotating password...")
	newPassword := "NewSecurePassword456!"
	if err := store.ChangePassword(password, newPassword); err != nil {
		log.Fatalf("Failed to change password: %v", err)
	}
	if _, err := store.Load(password); err != storage.ErrInvalidPassword {
		log.Fatal("Old password should not work!")
	}
	fmt.Println("  ✓ Password changed, old password rejected")

	// Step 7: Keyring with several named keys
	fmt.Println("\nStep 7: Storing several keys in a keyring...")
	kr, err := storage.OpenKeyring(storage.DefaultKeyringConfig(filepath.Join(tmpDir, "keyring")))
	if err != nil {
		log.Fatalf("Failed to open keyring: %v", err)
	}
	defer kr.Close()

	for _, name := range []string{"alice", "bob"} {
		k, err := keygen.GenerateKey(c)
		if err != nil {
			log.Fatalf("Failed to generate key: %v", err)
		}
		if err := kr.Put(name, k, newPassword); err != nil {
			log.Fatalf("Failed to store %s: %v", name, err)
		}
	}
	names, err := kr.List()
	if err != nil {
		log.Fatalf("Failed to list keyring: %v", err)
	}
	fmt.Printf("  ✓ Keyring holds %v\n", names)

	fmt.Println("\nStep 8: Secure deletion...")
	if err := store.Delete(); err != nil {
		log.Fatalf("Failed to delete: %v", err)
	}
	fmt.Println("  ✓ Key file overwritten and removed")

	fmt.Println("\n=== Storage Demo Complete! ===")
}
