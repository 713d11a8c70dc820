// Package cmd implements the eccrypt subcommands
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Caqil/eccryptor/pkg/crypto/curve"
	"github.com/Caqil/eccryptor/pkg/crypto/hash"
	"github.com/Caqil/eccryptor/pkg/cryptor"
	"github.com/Caqil/eccryptor/pkg/logger"
	"github.com/Caqil/eccryptor/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads
const EnvPrefix = "ECCRYPT"

// CommandFunc builds a subcommand bound to the Cli
type CommandFunc func(c *Cli) *cobra.Command

// Commands collects the subcommands registered by init functions
var Commands []CommandFunc

// AddCommand registers a subcommand
func AddCommand(cmd CommandFunc) {
	Commands = append(Commands, cmd)
}

// Argon2Options overrides the keystore KDF cost
type Argon2Options struct {
	Time    uint32 `mapstructure:"time"`
	Memory  uint32 `mapstructure:"memory"`
	Threads uint8  `mapstructure:"threads"`
}

// RootOptions are the settings shared by all subcommands. Precedence is
// flag, then ECCRYPT_* environment variable, then config file, then
// default.
type RootOptions struct {
	Config   string        `mapstructure:"config"`
	LogLevel string        `mapstructure:"log-level"`
	MAC      string        `mapstructure:"mac"`
	Password string        `mapstructure:"password"`
	Argon2   Argon2Options `mapstructure:"argon2"`
}

// VersionInfo is stamped in at build time
type VersionInfo struct {
	Version   string
	BuildTime string
	CommitID  string
}

// Cli is the context every subcommand runs in
type Cli struct {
	RootOptions RootOptions

	v       *viper.Viper
	rootCmd *cobra.Command
	version VersionInfo
	log     *logger.Logger
}

// NewCli creates the root command and its persistent flags
func NewCli() *Cli {
	c := &Cli{
		v:   viper.New(),
		log: logger.Nop(),
	}

	c.rootCmd = &cobra.Command{
		Use:           "eccrypt <command> [arguments]",
		Short:         "eccrypt encrypts files to elliptic curve public keys.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example:       "eccrypt keygen --curve secp256k1 --out key.json --pub key.pub",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadOptions()
		},
	}

	flags := c.rootCmd.PersistentFlags()
	flags.StringP("config", "C", "", "config file (yaml, json or toml)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error, disabled")
	flags.String("mac", hash.DefaultMAC.String(), "keystream MAC: HmacSHA512, HmacSHA256, HmacSHA3-512")
	flags.String("password", "", "keystore password (prefer ECCRYPT_PASSWORD)")
	_ = c.v.BindPFlags(flags)

	// Registered so that Unmarshal sees ECCRYPT_ARGON2_* variables
	c.v.SetDefault("argon2.time", 0)
	c.v.SetDefault("argon2.memory", 0)
	c.v.SetDefault("argon2.threads", 0)

	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	c.v.AutomaticEnv()

	return c
}

func (c *Cli) loadOptions() error {
	if path := c.v.GetString("config"); path != "" {
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := c.v.Unmarshal(&c.RootOptions); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	c.log = logger.New(&logger.Config{
		Level:  c.RootOptions.LogLevel,
		Output: c.rootCmd.ErrOrStderr(),
		Pretty: true,
	})
	logger.SetGlobalLogger(c.log)
	return nil
}

// SetVersion records build information for the version command
func (c *Cli) SetVersion(v VersionInfo) {
	c.version = v
	c.rootCmd.Version = v.Version
}

// AddCommands registers subcommands
func (c *Cli) AddCommands(cmds []CommandFunc) {
	for _, cmd := range cmds {
		c.rootCmd.AddCommand(cmd(c))
	}
}

// SetOutput redirects command output, for tests
func (c *Cli) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// Execute runs the command line
func (c *Cli) Execute(args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.Execute()
}

// Logger returns the logger configured from the root options
func (c *Cli) Logger() *logger.Logger {
	return c.log
}

// Cryptor builds a cryptor for the configured MAC on the named curve
func (c *Cli) Cryptor(curveName string) (*cryptor.Cryptor, error) {
	crv, err := curve.ByName(curveName)
	if err != nil {
		return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(curve.Names(), ", "))
	}
	mac, err := hash.ParseMACAlgorithm(c.RootOptions.MAC)
	if err != nil {
		return nil, err
	}
	return cryptor.New(&cryptor.Config{Curve: crv, MAC: mac, Logger: c.log})
}

// Password returns the keystore password from --password or
// ECCRYPT_PASSWORD
func (c *Cli) Password() (string, error) {
	if c.RootOptions.Password == "" {
		return "", errors.New("no password: set ECCRYPT_PASSWORD or pass --password")
	}
	return c.RootOptions.Password, nil
}

// KeyStore opens the file store at path with the configured KDF cost
func (c *Cli) KeyStore(path string) (*storage.FileStorage, error) {
	cfg := storage.DefaultStorageConfig(path)
	if a := c.RootOptions.Argon2; a.Time != 0 {
		cfg.Argon2Time = a.Time
	}
	if a := c.RootOptions.Argon2; a.Memory != 0 {
		cfg.Argon2Memory = a.Memory
	}
	if a := c.RootOptions.Argon2; a.Threads != 0 {
		cfg.Argon2Threads = a.Threads
	}

	fs, err := storage.NewFileStorage(cfg)
	if err != nil {
		return nil, err
	}
	return fs.WithLogger(c.log), nil
}

// readInput reads path, or stdin for "-"
func (c *Cli) readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or stdout for "-"
func (c *Cli) writeOutput(cmd *cobra.Command, path string, data []byte, mode os.FileMode) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, mode)
}
