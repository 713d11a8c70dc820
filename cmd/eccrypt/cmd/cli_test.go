package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Caqil/eccryptor/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastKDF(t *testing.T) {
	t.Setenv("ECCRYPT_ARGON2_TIME", "1")
	t.Setenv("ECCRYPT_ARGON2_MEMORY", "8192")
	t.Setenv("ECCRYPT_ARGON2_THREADS", "1")
}

func run(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cli := NewCli()
	cli.SetVersion(VersionInfo{Version: "1.2.3", CommitID: "abc", BuildTime: "today"})
	cli.AddCommands(Commands)

	var out, errOut bytes.Buffer
	cli.SetOutput(&out, &errOut)
	cli.rootCmd.SetIn(bytes.NewReader(stdin))

	err := cli.Execute(args)
	return out.String(), err
}

func TestKeygenEncryptDecrypt(t *testing.T) {
	fastKDF(t)
	t.Setenv("ECCRYPT_PASSWORD", "CorrectHorse42Battery")

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")
	pubPath := filepath.Join(dir, "key.pub")
	msgPath := filepath.Join(dir, "msg.txt")
	encPath := filepath.Join(dir, "msg.enc")
	decPath := filepath.Join(dir, "msg.dec")

	out, err := run(t, nil, "keygen", "--curve", "P-256", "--out", keyPath, "--pub", pubPath)
	require.NoError(t, err)
	assert.Contains(t, out, "curve:       P-256")

	msg := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, os.WriteFile(msgPath, msg, 0600))

	_, err = run(t, nil, "encrypt", "--pub", pubPath, "--in", msgPath, "--out", encPath)
	require.NoError(t, err)

	enc, err := os.ReadFile(encPath)
	require.NoError(t, err)
	assert.Len(t, enc, 33+len(msg))

	_, err = run(t, nil, "decrypt", "--key", keyPath, "--in", encPath, "--out", decPath)
	require.NoError(t, err)

	dec, err := os.ReadFile(decPath)
	require.NoError(t, err)
	assert.Equal(t, msg, dec)

	// Keystores are written owner-only
	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStdinStdoutPipeline(t *testing.T) {
	fastKDF(t)
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")
	pubPath := filepath.Join(dir, "key.pub")
	password := "--password=Piped1234567"

	_, err := run(t, nil, "keygen", password, "--out", keyPath, "--pub", pubPath)
	require.NoError(t, err)

	ct, err := run(t, []byte("from stdin"), "encrypt", "--mac", "HmacSHA3-512", "--pub", pubPath)
	require.NoError(t, err)

	pt, err := run(t, []byte(ct), "decrypt", "--mac", "HmacSHA3-512", password, "--key", keyPath)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", pt)

	// Mismatched MAC decrypts to garbage without an error
	garbage, err := run(t, []byte(ct), "decrypt", "--mac", "HmacSHA256", password, "--key", keyPath)
	require.NoError(t, err)
	assert.Len(t, garbage, len("from stdin"))
	assert.NotEqual(t, "from stdin", garbage)
}

func TestInspect(t *testing.T) {
	fastKDF(t)
	t.Setenv("ECCRYPT_PASSWORD", "Inspect123456")
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")
	pubPath := filepath.Join(dir, "key.pub")

	_, err := run(t, nil, "keygen", "--curve", "P-384", "--out", keyPath, "--pub", pubPath)
	require.NoError(t, err)

	out, err := run(t, nil, "inspect", "--key", keyPath)
	require.NoError(t, err)
	var meta storage.StorageMetadata
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, "P-384", meta.Curve)
	assert.True(t, meta.Secret)
	assert.Equal(t, uint32(8192), meta.KDFParams.Memory)

	out, err = run(t, nil, "inspect", "--pub", pubPath)
	require.NoError(t, err)
	var info publicKeyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "P-384", info.Curve)
	assert.Equal(t, 49, info.PointSize)
	assert.Equal(t, meta.Fingerprint, info.Fingerprint)

	_, err = run(t, nil, "inspect")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "eccrypt.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
		"password: FromConfig12345",
		"log-level: error",
		"argon2:",
		"  time: 1",
		"  memory: 8192",
		"  threads: 1",
	}, "\n")), 0600))

	keyPath := filepath.Join(dir, "key.json")
	_, err := run(t, nil, "--config", cfgPath, "keygen", "--out", keyPath)
	require.NoError(t, err)

	out, err := run(t, nil, "--config", cfgPath, "inspect", "--key", keyPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"curve": "secp256k1"`)
	assert.Contains(t, out, `"time": 1`)
}

func TestCommandErrors(t *testing.T) {
	fastKDF(t)
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.json")

	_, err := run(t, nil, "keygen", "--out", keyPath)
	assert.ErrorContains(t, err, "ECCRYPT_PASSWORD")

	t.Setenv("ECCRYPT_PASSWORD", "Errors1234567")
	_, err = run(t, nil, "keygen", "--curve", "curve25519", "--out", keyPath)
	assert.ErrorContains(t, err, "secp256k1")

	_, err = run(t, nil, "keygen", "--mac", "md5", "--out", keyPath)
	assert.Error(t, err)

	_, err = run(t, nil, "keygen", "--out", keyPath)
	require.NoError(t, err)
	_, err = run(t, nil, "keygen", "--out", keyPath)
	assert.ErrorContains(t, err, "already exists")
	_, err = run(t, nil, "keygen", "--force", "--out", keyPath)
	assert.NoError(t, err)

	_, err = run(t, []byte{0x00}, "decrypt", "--key", keyPath)
	assert.Error(t, err)

	_, err = run(t, nil, "decrypt", "--password", "WrongPassword99", "--key", keyPath, "--in", keyPath)
	assert.ErrorIs(t, err, storage.ErrInvalidPassword)

	_, err = run(t, nil, "encrypt")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-abc today\n", out)
}
