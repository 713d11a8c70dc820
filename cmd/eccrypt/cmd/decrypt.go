package cmd

import (
	"github.com/spf13/cobra"
)

// DecryptCommand decrypts with a keystore
type DecryptCommand struct {
	cli *Cli
	cmd *cobra.Command

	key string
	in  string
	out string
}

// NewDecryptCommand new decrypt cmd
func NewDecryptCommand(cli *Cli) *cobra.Command {
	d := &DecryptCommand{cli: cli}
	d.cmd = &cobra.Command{
		Use:     "decrypt",
		Short:   "Decrypt a file with a keystore. A wrong key yields garbage, not an error.",
		Example: "ECCRYPT_PASSWORD=... eccrypt decrypt --key key.json --in message.enc --out message.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.decrypt(cmd)
		},
	}
	d.cmd.Flags().StringVar(&d.key, "key", "", "keystore path")
	d.cmd.Flags().StringVar(&d.in, "in", "-", "ciphertext path, - for stdin")
	d.cmd.Flags().StringVar(&d.out, "out", "-", "plaintext path, - for stdout")
	_ = d.cmd.MarkFlagRequired("key")
	return d.cmd
}

func (d *DecryptCommand) decrypt(cmd *cobra.Command) error {
	password, err := d.cli.Password()
	if err != nil {
		return err
	}

	store, err := d.cli.KeyStore(d.key)
	if err != nil {
		return err
	}
	key, err := store.Load(password)
	if err != nil {
		return err
	}
	defer key.Zero()

	cr, err := d.cli.Cryptor(key.Curve().Name())
	if err != nil {
		return err
	}

	ciphertext, err := d.cli.readInput(cmd, d.in)
	if err != nil {
		return err
	}

	plaintext, err := cr.Decrypt(ciphertext, key)
	if err != nil {
		return err
	}

	return d.cli.writeOutput(cmd, d.out, plaintext, 0600)
}

func init() {
	AddCommand(NewDecryptCommand)
}
