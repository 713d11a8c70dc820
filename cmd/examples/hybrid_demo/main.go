// Package main walks through hybrid encryption between two parties
package main

import (
	"fmt"
	"log"

	"github.com/Caqil/eccryptor/pkg/cryptor"
	"github.com/Caqil/eccryptor/pkg/keygen"
	"github.com/Caqil/eccryptor/pkg/logger"
)

func main() {
	fmt.Println("=== Hybrid Encryption Demo ===")

	cfg := cryptor.DefaultConfig()
	cfg.Logger = logger.New(&logger.Config{Level: "debug", Pretty: true})

	cr, err := cryptor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create cryptor: %v", err)
	}
	fmt.Printf("Curve: %s, MAC: %s, overhead: %d bytes\n\n", cr.Curve(), cr.MAC(), cr.Overhead())

	// Alice publishes a public key
	alice, err := cr.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	pubBytes, err := alice.Public().MarshalBinary()
	if err != nil {
		log.Fatalf("Failed to encode public key: %v", err)
	}
	fmt.Printf("Alice's public key: %d bytes, fingerprint %s\n", len(pubBytes), alice.Fingerprint())

	// Bob only has the encoded public key
	alicePub, err := keygen.ParseKey(pubBytes)
	if err != nil {
		log.Fatalf("Failed to parse public key: %v", err)
	}

	msg := []byte("Meet at the usual place at noon.")
	ct, err := cr.Encrypt(msg, alicePub)
	if err != nil {
		log.Fatalf("Failed to encrypt: %v", err)
	}
	fmt.Printf("Bob sends %d bytes: %x...\n", len(ct), ct[:16])

	pt, err := cr.Decrypt(ct, alice)
	if err != nil {
		log.Fatalf("Failed to decrypt: %v", err)
	}
	fmt.Printf("Alice reads: %q\n", pt)

	// Nothing authenticates the ciphertext
	eve, err := cr.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	garbage, err := cr.Decrypt(ct, eve)
	if err != nil {
		log.Fatalf("Failed to decrypt: %v", err)
	}
	fmt.Printf("Eve reads garbage without any error: %x\n", garbage)

	fmt.Println("\n=== Demo Complete! ===")
}
