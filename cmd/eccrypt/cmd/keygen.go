package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// KeygenCommand generates a key pair into an encrypted keystore
type KeygenCommand struct {
	cli *Cli
	cmd *cobra.Command

	curve   string
	out     string
	pub     string
	replace bool
}

// NewKeygenCommand new keygen cmd
func NewKeygenCommand(cli *Cli) *cobra.Command {
	k := &KeygenCommand{cli: cli}
	k.cmd = &cobra.Command{
		Use:     "keygen",
		Short:   "Generate a key pair into a password-protected keystore.",
		Example: "ECCRYPT_PASSWORD=... eccrypt keygen --curve secp256k1 --out key.json --pub key.pub",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return k.generate(cmd)
		},
	}
	k.cmd.Flags().StringVar(&k.curve, "curve", "secp256k1", "curve name")
	k.cmd.Flags().StringVar(&k.out, "out", "", "keystore path")
	k.cmd.Flags().StringVar(&k.pub, "pub", "", "public key output path")
	k.cmd.Flags().BoolVar(&k.replace, "force", false, "overwrite an existing keystore")
	_ = k.cmd.MarkFlagRequired("out")
	return k.cmd
}

func (k *KeygenCommand) generate(cmd *cobra.Command) error {
	password, err := k.cli.Password()
	if err != nil {
		return err
	}

	cr, err := k.cli.Cryptor(k.curve)
	if err != nil {
		return err
	}

	store, err := k.cli.KeyStore(k.out)
	if err != nil {
		return err
	}
	if store.Exists() && !k.replace {
		return fmt.Errorf("keystore %s already exists (use --force to overwrite)", k.out)
	}

	key, err := cr.GenerateKey()
	if err != nil {
		return err
	}
	defer key.Zero()

	if err := store.Save(key, password); err != nil {
		return err
	}
	if k.pub != "" {
		if err := writePublicKey(k.pub, key); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "curve:       %s\nfingerprint: %s\n", key.Curve().Name(), key.Fingerprint())
	return nil
}

func init() {
	AddCommand(NewKeygenCommand)
}
