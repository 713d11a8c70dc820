package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Caqil/eccryptor/pkg/keygen"
)

// Public key files hold the hex encoding of keygen.Key.MarshalBinary on a
// single line

func writePublicKey(path string, key *keygen.Key) error {
	data, err := key.Public().MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(data)+"\n"), 0644)
}

func readPublicKey(path string) (*keygen.Key, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(strings.TrimSpace(string(text)))
	if err != nil {
		return nil, fmt.Errorf("public key %s: %w", path, err)
	}
	key, err := keygen.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("public key %s: %w", path, err)
	}
	return key, nil
}
